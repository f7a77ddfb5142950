package segment

import (
	"fmt"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxConfig ONNX 运行时配置
type OnnxConfig struct {
	SessionOptions *ort.SessionOptions

	// 必填参数
	OnnxRuntimeLibPath string // onnxruntime.dll (或 .so, .dylib) 的路径
	// 可选参数
	UseCuda    bool // (可选) 是否启用 CUDA
	NumThreads int  // (可选) ONNX 线程数, 默认由CPU核心数决定
}

var (
	initErr error
	once    sync.Once
)

// New 初始化 ONNX 环境并创建会话选项
//
// ONNX Runtime 环境为进程级单例，共享库路径由首次调用决定
func (cfg *OnnxConfig) New() error {
	if cfg.OnnxRuntimeLibPath == "" {
		return fmt.Errorf("OnnxRuntimeLibPath 不能为空")
	}
	once.Do(func() {
		ort.SetSharedLibraryPath(cfg.OnnxRuntimeLibPath)
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return fmt.Errorf("初始化 ONNX Runtime 环境失败: %w", initErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("创建会话选项失败: %w", err)
	}
	if cfg.NumThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return err
		}
	}
	if cfg.UseCuda {
		if err := appendCuda(options); err != nil {
			return err
		}
	}
	cfg.SessionOptions = options

	return nil
}

// appendCuda 向会话选项添加 CUDA 执行提供者
func appendCuda(options *ort.SessionOptions) error {
	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("创建 CUDAProviderOptions 失败: %w", err)
	}
	defer cudaOptions.Destroy()
	if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
		return fmt.Errorf("添加 CUDA 执行提供者失败: %w", err)
	}
	return nil
}

// DefaultLibraryPath 根据运行时环境判断加载哪个库文件
func DefaultLibraryPath() string {
	baseDir := "./lib/"
	libName := "onnxruntime"

	// windows onnxruntime.dll
	if runtime.GOOS == "windows" {
		return baseDir + libName + ".dll"
	}

	var ext string
	switch runtime.GOOS {
	case "darwin":
		ext = "dylib"
	case "linux":
		ext = "so"
	default:
		return baseDir + libName + "_amd64.so" // 默认返回 linux amd64
	}

	// 拼接完整路径: ./lib/onnxruntime + _ + amd64/arm64 + . + so/dylib
	return fmt.Sprintf("%s%s_%s.%s", baseDir, libName, runtime.GOARCH, ext)
}
