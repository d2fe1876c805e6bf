// Package emb runs a sentence-embedding ONNX model (MiniLM, BGE and similar)
// through ONNX Runtime, producing mean-pooled, L2-normalised vectors.
package emb

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config locates the runtime library, the model and its tokenizer.
type Config struct {
	OrtDLL        string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
}

const (
	inputIDs      = "input_ids"
	attentionMask = "attention_mask"
	tokenTypeIDs  = "token_type_ids"
)

var (
	envMu   sync.Mutex
	envRefs int
)

// Encoder turns text into a fixed-size embedding. It is safe for concurrent use.
type Encoder struct {
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	tk          *tokenizer.Tokenizer
	inputNames  []string
	outputName  string
	hidden      int
	maxSeqLen   int
	initialized bool
}

// Init loads the runtime, the tokenizer and the model.
func (e *Encoder) Init(cfg Config) error {
	if cfg.ModelPath == "" {
		return errors.New("emb: model path is required")
	}
	if cfg.TokenizerPath == "" {
		return errors.New("emb: tokenizer path is required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("emb: load tokenizer: %w", err)
	}
	if err := acquireEnvironment(cfg.OrtDLL); err != nil {
		return err
	}
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		releaseEnvironment()
		return fmt.Errorf("emb: inspect model: %w", err)
	}
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		switch in.Name {
		case inputIDs, attentionMask, tokenTypeIDs:
			names = append(names, in.Name)
		default:
			releaseEnvironment()
			return fmt.Errorf("emb: unsupported model input %q", in.Name)
		}
	}
	if len(outputs) == 0 {
		releaseEnvironment()
		return errors.New("emb: model has no outputs")
	}
	out := outputs[0]
	if len(out.Dimensions) != 3 || out.Dimensions[2] <= 0 {
		releaseEnvironment()
		return fmt.Errorf("emb: expected [batch, seq, hidden] output, got %v", out.Dimensions)
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, names, []string{out.Name}, nil)
	if err != nil {
		releaseEnvironment()
		return fmt.Errorf("emb: create session: %w", err)
	}
	e.session = session
	e.tk = tk
	e.inputNames = names
	e.outputName = out.Name
	e.hidden = int(out.Dimensions[2])
	e.maxSeqLen = cfg.MaxSeqLen
	e.initialized = true
	return nil
}

// Dimensions returns the embedding size.
func (e *Encoder) Dimensions() int {
	return e.hidden
}

// Encode embeds a single text.
func (e *Encoder) Encode(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil, errors.New("emb: encoder is not initialized")
	}
	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("emb: tokenize: %w", err)
	}
	ids, mask, types := truncate(enc.Ids, e.maxSeqLen), truncate(enc.AttentionMask, e.maxSeqLen), truncate(enc.TypeIds, e.maxSeqLen)
	seqLen := len(ids)
	if seqLen == 0 {
		return nil, errors.New("emb: empty token sequence")
	}
	shape := ort.NewShape(1, int64(seqLen))
	feeds := map[string][]int64{
		inputIDs:      toInt64(ids, seqLen),
		attentionMask: toInt64(mask, seqLen),
		tokenTypeIDs:  toInt64(types, seqLen),
	}
	inputs := make([]ort.Value, 0, len(e.inputNames))
	defer func() {
		for _, v := range inputs {
			_ = v.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		t, err := ort.NewTensor(shape, feeds[name])
		if err != nil {
			return nil, fmt.Errorf("emb: %s tensor: %w", name, err)
		}
		inputs = append(inputs, t)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(seqLen), int64(e.hidden)))
	if err != nil {
		return nil, fmt.Errorf("emb: output tensor: %w", err)
	}
	defer output.Destroy()
	if err := e.session.Run(inputs, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("emb: run: %w", err)
	}
	return meanPool(output.GetData(), feeds[attentionMask], seqLen, e.hidden), nil
}

// Close releases the session and, when no other encoder uses it, the runtime.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	_ = e.session.Destroy()
	e.session = nil
	e.initialized = false
	releaseEnvironment()
}

func acquireEnvironment(dll string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		if dll != "" {
			ort.SetSharedLibraryPath(dll)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("emb: initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		return
	}
	envRefs--
	if envRefs == 0 {
		_ = ort.DestroyEnvironment()
	}
}

// truncate keeps the first limit-1 tokens plus the final (separator) token.
func truncate(v []int, limit int) []int {
	if len(v) <= limit {
		return v
	}
	out := make([]int, 0, limit)
	out = append(out, v[:limit-1]...)
	return append(out, v[len(v)-1])
}

func toInt64(v []int, n int) []int64 {
	out := make([]int64, n)
	for i := 0; i < n && i < len(v); i++ {
		out[i] = int64(v[i])
	}
	return out
}

// meanPool averages token embeddings under the attention mask and
// L2-normalises the result.
func meanPool(hiddenStates []float32, mask []int64, seqLen, hidden int) []float32 {
	out := make([]float32, hidden)
	var count float32
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		row := hiddenStates[t*hidden : (t+1)*hidden]
		for i, v := range row {
			out[i] += v
		}
	}
	if count == 0 {
		return out
	}
	var norm float64
	for i := range out {
		out[i] /= count
		norm += float64(out[i]) * float64(out[i])
	}
	if norm == 0 {
		return out
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range out {
		out[i] *= scale
	}
	return out
}
