package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// BIO tag set the token-classification model was exported with. The label
// order must match the model's classification head.
const (
	tagOutside = iota
	tagBeginName
	tagInsideName
	tagBeginQty
	tagInsideQty

	numTags
)

const defaultMaxSeqLen = 256

// LocalConfig configures the in-process ONNX backend.
type LocalConfig struct {
	ModelPath     string // model.onnx
	TokenizerPath string // tokenizer.json
	OrtSharedLib  string // optional path to the onnxruntime shared library
	MaxSeqLen     int
}

// LocalExtractor runs a token-classification model in process via ONNX
// Runtime and decodes BIO tags into name/quantity entities.
type LocalExtractor struct {
	cfg     LocalConfig
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession

	mu sync.Mutex // ORT sessions are not safe for concurrent Run
}

var (
	ortInit    sync.Once
	ortInitErr error
)

// initORT initializes the shared ONNX Runtime environment once per process.
// The environment outlives individual extractors: per-request handles only
// own their session and tokenizer.
func initORT(sharedLib string) error {
	ortInit.Do(func() {
		if sharedLib != "" {
			ort.SetSharedLibraryPath(sharedLib)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

func NewLocalExtractor(cfg LocalConfig) (*LocalExtractor, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = defaultMaxSeqLen
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", ErrUnavailable, cfg.ModelPath, err)
	}
	if err := initORT(cfg.OrtSharedLib); err != nil {
		return nil, fmt.Errorf("%w: init onnxruntime: %v", ErrUnavailable, err)
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load tokenizer %s: %v", ErrUnavailable, cfg.TokenizerPath, err)
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load model %s: %v", ErrUnavailable, cfg.ModelPath, err)
	}
	return &LocalExtractor{cfg: cfg, tk: tk, session: session}, nil
}

// LocalFactory returns a Factory producing in-process extractors.
func LocalFactory(cfg LocalConfig) Factory {
	return func(_ context.Context) (Extractor, error) {
		return NewLocalExtractor(cfg)
	}
}

// Extract tokenizes the text, runs the model, and decodes tagged spans back
// to substrings of the input via token offsets.
func (e *LocalExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	en, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	n := len(en.Ids)
	if n > e.cfg.MaxSeqLen {
		n = e.cfg.MaxSeqLen
	}
	if n == 0 {
		return nil, nil
	}

	ids := make([]int64, n)
	mask := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(en.Ids[i])
		mask[i] = 1
	}

	tags, err := e.run(ids, mask)
	if err != nil {
		return nil, err
	}

	spans := decodeSpans(tags, en.Offsets[:n], len(text))
	return pairEntities(text, spans), nil
}

func (e *LocalExtractor) run(ids, mask []int64) ([]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, fmt.Errorf("%w: extractor is closed", ErrUnavailable)
	}

	n := int64(len(ids))
	shape := ort.NewShape(1, n)

	idTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer idTensor.Destroy() //nolint:errcheck

	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskTensor.Destroy() //nolint:errcheck

	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, n, int64(numTags)))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer logits.Destroy() //nolint:errcheck

	if err := e.session.Run([]ort.Value{idTensor, maskTensor}, []ort.Value{logits}); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}

	return argmaxTags(logits.GetData(), numTags), nil
}

// Close destroys the ONNX session. The shared runtime environment stays up
// for the rest of the process.
func (e *LocalExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

// argmaxTags reduces flat (seq × tags) logits to one tag index per token.
func argmaxTags(logits []float32, numLabels int) []int {
	n := len(logits) / numLabels
	tags := make([]int, n)
	for i := 0; i < n; i++ {
		best := 0
		bestScore := logits[i*numLabels]
		for j := 1; j < numLabels; j++ {
			if s := logits[i*numLabels+j]; s > bestScore {
				best, bestScore = j, s
			}
		}
		tags[i] = best
	}
	return tags
}

type spanKind int

const (
	spanName spanKind = iota
	spanQty
)

// span is a contiguous tagged region, in offsets of the original text.
type span struct {
	kind  spanKind
	start int
	end   int
}

// decodeSpans folds per-token BIO tags into contiguous spans. Special tokens
// (zero-width offsets) break the current span. A dangling I- tag without a
// matching B- opens a new span, which tolerates slightly inconsistent model
// output. Spans with out-of-range offsets are dropped.
func decodeSpans(tags []int, offsets [][]int, textLen int) []span {
	var spans []span
	var cur *span

	flush := func() {
		if cur != nil {
			spans = append(spans, *cur)
			cur = nil
		}
	}

	open := func(kind spanKind, start, end int) {
		flush()
		cur = &span{kind: kind, start: start, end: end}
	}

	extend := func(kind spanKind, start, end int) {
		if cur != nil && cur.kind == kind {
			cur.end = end
			return
		}
		open(kind, start, end)
	}

	for i, tag := range tags {
		if i >= len(offsets) {
			break
		}
		off := offsets[i]
		if len(off) < 2 || off[0] >= off[1] {
			flush()
			continue
		}
		switch tag {
		case tagBeginName:
			open(spanName, off[0], off[1])
		case tagInsideName:
			extend(spanName, off[0], off[1])
		case tagBeginQty:
			open(spanQty, off[0], off[1])
		case tagInsideQty:
			extend(spanQty, off[0], off[1])
		default:
			flush()
		}
	}
	flush()

	out := spans[:0]
	for _, s := range spans {
		if s.start < 0 || s.end > textLen {
			continue
		}
		out = append(out, s)
	}
	return out
}

// pairEntities groups decoded spans into entities: each name span becomes an
// entity, and each quantity span attaches to the nearest name span without a
// quantity yet. Ties prefer the following name, matching "2 slices of tomato"
// word order. Quantity spans with no free name are dropped.
func pairEntities(text string, spans []span) []Entity {
	var nameIdx []int
	for i, s := range spans {
		if s.kind == spanName {
			nameIdx = append(nameIdx, i)
		}
	}
	if len(nameIdx) == 0 {
		return nil
	}

	entities := make([]Entity, len(nameIdx))
	for i, idx := range nameIdx {
		entities[i] = Entity{Name: text[spans[idx].start:spans[idx].end]}
	}

	for i, s := range spans {
		if s.kind != spanQty {
			continue
		}
		best := -1
		bestDist := 0
		for j, idx := range nameIdx {
			if entities[j].Quantity != "" {
				continue
			}
			dist := idx - i
			if dist < 0 {
				dist = -dist
			}
			if best == -1 || dist < bestDist || (dist == bestDist && idx > i && nameIdx[best] < i) {
				best, bestDist = j, dist
			}
		}
		if best >= 0 {
			entities[best].Quantity = text[s.start:s.end]
		}
	}
	return entities
}
