package config

import (
	"github.com/spf13/viper"

	"spendsense/internal/embedding"
	"spendsense/internal/service"
)

// NewEmbedder builds the process-wide embedding provider from viper
// configuration. When transformer model files are configured the ONNX
// embedder is loaded lazily on first use; otherwise the deterministic
// hashing embedder serves directly, which needs no load step.
func NewEmbedder() service.Embedder {
	modelPath := ExpandPath(viper.GetString("embedding.model_path"))
	tokenizerPath := ExpandPath(viper.GetString("embedding.tokenizer_path"))

	dim := viper.GetInt("embedding.dim")
	if dim <= 0 {
		dim = embedding.DefaultDim
	}

	if modelPath == "" || tokenizerPath == "" {
		return embedding.NewHashingEmbedder(dim)
	}

	cfg := embedding.ONNXConfig{
		SharedLibraryPath: ExpandPath(viper.GetString("embedding.onnxruntime_path")),
		ModelPath:         modelPath,
		TokenizerPath:     tokenizerPath,
		MaxSeqLen:         viper.GetInt("embedding.max_seq_len"),
		Dim:               dim,
	}

	return embedding.NewLazyEmbedder(dim, func() (service.Embedder, error) {
		return embedding.NewONNXEmbedder(cfg)
	})
}
