// Package fasttext reads supervised fastText models (.bin) and predicts labels.
// Only inference is supported; quantized models are rejected.
package fasttext

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
)

const (
	fileMagic   = 793712314
	fileVersion = 12

	modelSupervised = 3
)

// Loss is the output layer a model was trained with.
type Loss int32

const (
	LossHierarchicalSoftmax Loss = 1
	LossNegativeSampling    Loss = 2
	LossSoftmax             Loss = 3
	LossOneVsAll            Loss = 4
)

var (
	ErrBadMagic  = errors.New("fasttext: not a fastText model file")
	ErrQuantized = errors.New("fasttext: quantized models are not supported")
)

// Args are the training arguments stored in the model header.
type Args struct {
	Dim          int32
	WS           int32
	Epoch        int32
	MinCount     int32
	Neg          int32
	WordNgrams   int32
	Loss         Loss
	Model        int32
	Bucket       int32
	Minn         int32
	Maxn         int32
	LRUpdateRate int32
	T            float64
}

// Prediction is a label with its probability.
type Prediction struct {
	Label       string
	Probability float64
}

// Model is a loaded supervised model. It is read-only after Load and safe
// for concurrent use.
type Model struct {
	args   Args
	dict   *dictionary
	input  *matrix
	output *matrix
	tree   []node
}

// Load reads a model from path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	m, err := Read(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("Loaded fastText model", "path", path, "words", m.dict.nwords, "labels", m.dict.nlabels, "dim", m.args.Dim)
	return m, nil
}

// Read decodes a model from r.
func Read(r io.Reader) (*Model, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var header struct {
		Magic   int32
		Version int32
	}
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != fileMagic {
		return nil, ErrBadMagic
	}
	if header.Version > fileVersion {
		return nil, fmt.Errorf("fasttext: unsupported model version %d", header.Version)
	}

	m := &Model{}
	if err := binary.Read(br, binary.LittleEndian, &m.args); err != nil {
		return nil, fmt.Errorf("failed to read args: %w", err)
	}
	if header.Version == 11 && m.args.Model == modelSupervised {
		m.args.Maxn = 0
	}
	if m.args.Model != modelSupervised {
		return nil, fmt.Errorf("fasttext: not a supervised model (model=%d)", m.args.Model)
	}

	var err error
	if m.dict, err = readDictionary(br, &m.args); err != nil {
		return nil, err
	}
	if m.dict.nlabels == 0 {
		return nil, errors.New("fasttext: model has no labels")
	}

	if m.input, err = readDense(br); err != nil {
		return nil, fmt.Errorf("failed to read input matrix: %w", err)
	}
	if m.output, err = readDense(br); err != nil {
		return nil, fmt.Errorf("failed to read output matrix: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	if m.args.Loss == LossHierarchicalSoftmax {
		m.tree = buildTree(m.dict.labelCounts())
	}
	return m, nil
}

func (m *Model) validate() error {
	dim := int64(m.args.Dim)
	if m.input.cols != dim || m.output.cols != dim {
		return fmt.Errorf("fasttext: matrix width does not match dim %d", dim)
	}
	if m.input.rows < int64(m.dict.nwords)+int64(m.args.Bucket) {
		return fmt.Errorf("fasttext: input matrix has %d rows, want %d", m.input.rows, int64(m.dict.nwords)+int64(m.args.Bucket))
	}

	outRows := int64(m.dict.nlabels)
	switch m.args.Loss {
	case LossHierarchicalSoftmax:
		outRows--
	case LossNegativeSampling, LossSoftmax, LossOneVsAll:
	default:
		return fmt.Errorf("fasttext: unknown loss %d", m.args.Loss)
	}
	if m.output.rows < outRows {
		return fmt.Errorf("fasttext: output matrix has %d rows, want %d", m.output.rows, outRows)
	}
	return nil
}

// Args returns the model's training arguments.
func (m *Model) Args() Args {
	return m.args
}

// Labels returns the labels in model order.
func (m *Model) Labels() []string {
	labels := make([]string, m.dict.nlabels)
	for i := range labels {
		labels[i] = m.dict.label(int32(i))
	}
	return labels
}

// Predict returns up to k labels for text, most probable first. Labels keep
// their "__label__" prefix. Text that maps to no input rows yields nothing.
func (m *Model) Predict(text string, k int) []Prediction {
	ids := m.dict.line(text)
	if len(ids) == 0 || k <= 0 {
		return nil
	}

	hidden := make([]float32, m.args.Dim)
	for _, id := range ids {
		row := m.input.row(id)
		for i := range hidden {
			hidden[i] += row[i]
		}
	}
	scale := 1 / float32(len(ids))
	for i := range hidden {
		hidden[i] *= scale
	}

	var best []scored
	switch m.args.Loss {
	case LossHierarchicalSoftmax:
		root := int32(2*m.dict.nlabels - 2)
		best = m.dfs(k, root, 0, hidden, best)
	case LossSoftmax:
		best = topK(k, softmax(m.scores(hidden)))
	default:
		scores := m.scores(hidden)
		for i, s := range scores {
			scores[i] = sigmoid(s)
		}
		best = topK(k, scores)
	}

	predictions := make([]Prediction, len(best))
	for i, s := range best {
		predictions[i] = Prediction{
			Label:       m.dict.label(s.label),
			Probability: math.Min(math.Exp(s.score), 1),
		}
	}
	return predictions
}

func (m *Model) scores(hidden []float32) []float64 {
	out := make([]float64, m.dict.nlabels)
	for i := range out {
		out[i] = float64(dot(m.output.row(int32(i)), hidden))
	}
	return out
}

type scored struct {
	score float64
	label int32
}

// insert keeps best sorted by descending score and at most k long.
func insert(best []scored, k int, s scored) []scored {
	i := sort.Search(len(best), func(i int) bool { return best[i].score < s.score })
	if i >= k {
		return best
	}
	best = append(best, scored{})
	copy(best[i+1:], best[i:])
	best[i] = s
	if len(best) > k {
		best = best[:k]
	}
	return best
}

func topK(k int, probs []float64) []scored {
	var best []scored
	for i, p := range probs {
		best = insert(best, k, scored{score: stdLog(p), label: int32(i)})
	}
	return best
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	var z float64
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		z += out[i]
	}
	for i := range out {
		out[i] /= z
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func stdLog(x float64) float64 {
	return math.Log(x + 1e-5)
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
