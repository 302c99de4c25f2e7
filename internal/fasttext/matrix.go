package fasttext

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const maxElements = 1 << 32

type matrix struct {
	rows int64
	cols int64
	data []float32
}

func (m *matrix) row(i int32) []float32 {
	start := int64(i) * m.cols
	return m.data[start : start+m.cols]
}

// readDense reads the quantization flag and a dense row-major float32 matrix.
func readDense(r *bufio.Reader) (*matrix, error) {
	quant, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if quant != 0 {
		return nil, ErrQuantized
	}

	var shape [2]int64
	if err := binary.Read(r, binary.LittleEndian, &shape); err != nil {
		return nil, err
	}
	if shape[0] < 0 || shape[1] < 0 || (shape[1] > 0 && shape[0] > maxElements/shape[1]) {
		return nil, fmt.Errorf("invalid matrix shape %dx%d", shape[0], shape[1])
	}

	m := &matrix{rows: shape[0], cols: shape[1], data: make([]float32, shape[0]*shape[1])}

	buf := make([]byte, 64*1024)
	for off := 0; off < len(m.data); {
		n := min(len(buf)/4, len(m.data)-off)
		if _, err := io.ReadFull(r, buf[:n*4]); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			m.data[off+i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		off += n
	}
	return m, nil
}
