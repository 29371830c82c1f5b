package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig configures the transformer sentence embedder.
type ONNXConfig struct {
	// SharedLibraryPath points at the onnxruntime shared library. Empty uses
	// the onnxruntime_go default search behavior.
	SharedLibraryPath string
	ModelPath         string
	TokenizerPath     string
	MaxSeqLen         int
	Dim               int
}

// ONNXEmbedder embeds text with a MiniLM-style sentence transformer exported
// to ONNX. Token states are mean-pooled under the attention mask and
// L2-normalized, so outputs are deterministic for fixed model weights.
type ONNXEmbedder struct {
	cfg       ONNXConfig
	tokenizer *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	mu        sync.Mutex
}

var ortInitOnce sync.Once

// NewONNXEmbedder loads the tokenizer and the ONNX session. Loading is
// expensive; callers should construct one embedder per process and share it.
func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, fmt.Errorf("onnx embedder requires model and tokenizer paths")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 128
	}
	if cfg.Dim <= 0 {
		cfg.Dim = 384
	}

	var initErr error
	ortInitOnce.Do(func() {
		if cfg.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", initErr)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}

	return &ONNXEmbedder{
		cfg:       cfg,
		tokenizer: tk,
		session:   session,
	}, nil
}

// Dim returns the embedding dimensionality.
func (e *ONNXEmbedder) Dim() int {
	return e.cfg.Dim
}

// Close releases the ONNX session.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}

// Embed encodes each text into a Dim-length vector.
func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *ONNXEmbedder) embedOne(text string) ([]float32, error) {
	encoding, err := e.tokenizer.EncodeSingle(NormalizeText(text), true)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize: %w", err)
	}

	ids := encoding.Ids
	mask := encoding.AttentionMask
	typeIDs := encoding.TypeIds
	if len(ids) > e.cfg.MaxSeqLen {
		ids = ids[:e.cfg.MaxSeqLen]
		mask = mask[:e.cfg.MaxSeqLen]
		typeIDs = typeIDs[:e.cfg.MaxSeqLen]
	}

	seqLen := len(ids)
	if seqLen == 0 {
		return make([]float32, e.cfg.Dim), nil
	}

	inputIDs := make([]int64, seqLen)
	attention := make([]int64, seqLen)
	tokenTypes := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		inputIDs[i] = int64(ids[i])
		attention[i] = int64(mask[i])
		tokenTypes[i] = int64(typeIDs[i])
	}

	shape := ort.NewShape(1, int64(seqLen))
	idTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer idTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attention)
	if err != nil {
		return nil, fmt.Errorf("failed to create mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to create type tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(seqLen), int64(e.cfg.Dim)))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	e.mu.Lock()
	session := e.session
	if session == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	runErr := session.Run(
		[]ort.Value{idTensor, maskTensor, typeTensor},
		[]ort.Value{outputTensor})
	e.mu.Unlock()
	if runErr != nil {
		return nil, fmt.Errorf("onnx inference failed: %w", runErr)
	}

	return meanPool(outputTensor.GetData(), attention, seqLen, e.cfg.Dim), nil
}

// meanPool averages token hidden states under the attention mask and
// L2-normalizes the result.
func meanPool(hidden []float32, mask []int64, seqLen, dim int) []float32 {
	pooled := make([]float32, dim)
	var count float32
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		base := t * dim
		for d := 0; d < dim; d++ {
			pooled[d] += hidden[base+d]
		}
	}
	if count > 0 {
		for d := range pooled {
			pooled[d] /= count
		}
	}
	return l2Normalize(pooled)
}
