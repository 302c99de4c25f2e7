package fasttext

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	eos         = "</s>"
	bow         = "<"
	eow         = ">"
	labelPrefix = "__label__"

	typeWord  int8 = 0
	typeLabel int8 = 1
)

type entry struct {
	word  string
	count int64
	typ   int8
}

type dictionary struct {
	args    *Args
	words   []entry
	index   map[string]int32
	nwords  int32
	nlabels int32

	// -1 means the dictionary was never pruned
	pruneIdxSize int64
	pruneIdx     map[int32]int32
}

func readDictionary(r *bufio.Reader, args *Args) (*dictionary, error) {
	var header struct {
		Size         int32
		NWords       int32
		NLabels      int32
		NTokens      int64
		PruneIdxSize int64
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read dictionary header: %w", err)
	}
	if header.Size < 0 || header.NWords+header.NLabels != header.Size {
		return nil, fmt.Errorf("corrupt dictionary header: size=%d words=%d labels=%d", header.Size, header.NWords, header.NLabels)
	}

	d := &dictionary{
		args:         args,
		words:        make([]entry, header.Size),
		index:        make(map[string]int32, header.Size),
		nwords:       header.NWords,
		nlabels:      header.NLabels,
		pruneIdxSize: header.PruneIdxSize,
	}

	for i := range d.words {
		word, err := r.ReadString(0)
		if err != nil {
			return nil, fmt.Errorf("failed to read dictionary entry %d: %w", i, err)
		}
		var tail struct {
			Count int64
			Type  int8
		}
		if err := binary.Read(r, binary.LittleEndian, &tail); err != nil {
			return nil, fmt.Errorf("failed to read dictionary entry %d: %w", i, err)
		}
		d.words[i] = entry{word: strings.TrimSuffix(word, "\x00"), count: tail.Count, typ: tail.Type}
		d.index[d.words[i].word] = int32(i)
	}

	if d.pruneIdxSize > 0 {
		d.pruneIdx = make(map[int32]int32, d.pruneIdxSize)
		for i := int64(0); i < d.pruneIdxSize; i++ {
			var pair [2]int32
			if err := binary.Read(r, binary.LittleEndian, &pair); err != nil {
				return nil, fmt.Errorf("failed to read prune index: %w", err)
			}
			d.pruneIdx[pair[0]] = pair[1]
		}
	}

	return d, nil
}

func (d *dictionary) label(i int32) string {
	return d.words[d.nwords+i].word
}

func (d *dictionary) labelCounts() []int64 {
	counts := make([]int64, d.nlabels)
	for i := range counts {
		counts[i] = d.words[d.nwords+int32(i)].count
	}
	return counts
}

// line maps text to input matrix rows: word ids, character n-gram buckets
// and word n-gram buckets. Label tokens are ignored.
func (d *dictionary) line(text string) []int32 {
	var ids []int32
	var hashes []int32
	for _, token := range tokenize(text) {
		wid, ok := d.index[token]
		typ := typeWord
		if ok {
			typ = d.words[wid].typ
		} else {
			wid = -1
			if strings.HasPrefix(token, labelPrefix) {
				typ = typeLabel
			}
		}
		if typ != typeWord {
			continue
		}
		ids = d.addSubwords(ids, token, wid)
		hashes = append(hashes, int32(hash(token)))
	}
	return d.addWordNgrams(ids, hashes)
}

func (d *dictionary) addSubwords(ids []int32, token string, wid int32) []int32 {
	if wid < 0 {
		if token != eos {
			ids = d.computeSubwords(ids, bow+token+eow)
		}
		return ids
	}
	ids = append(ids, wid)
	if d.args.Maxn > 0 && token != eos {
		ids = d.computeSubwords(ids, bow+token+eow)
	}
	return ids
}

// computeSubwords appends the buckets of every character n-gram of word with
// minn <= n <= maxn. Lengths count UTF-8 characters, not bytes.
func (d *dictionary) computeSubwords(ids []int32, word string) []int32 {
	if d.args.Bucket <= 0 {
		return ids
	}
	for i := 0; i < len(word); i++ {
		if word[i]&0xC0 == 0x80 {
			continue
		}
		j := i
		for n := int32(1); j < len(word) && n <= d.args.Maxn; n++ {
			j++
			for j < len(word) && word[j]&0xC0 == 0x80 {
				j++
			}
			if n >= d.args.Minn && !(n == 1 && (i == 0 || j == len(word))) {
				h := hash(word[i:j]) % uint32(d.args.Bucket)
				ids = d.pushHash(ids, int32(h))
			}
		}
	}
	return ids
}

func (d *dictionary) addWordNgrams(ids []int32, hashes []int32) []int32 {
	if d.args.Bucket <= 0 {
		return ids
	}
	n := int(d.args.WordNgrams)
	for i := range hashes {
		h := uint64(int64(hashes[i]))
		for j := i + 1; j < len(hashes) && j < i+n; j++ {
			h = h*116049371 + uint64(int64(hashes[j]))
			ids = d.pushHash(ids, int32(h%uint64(d.args.Bucket)))
		}
	}
	return ids
}

func (d *dictionary) pushHash(ids []int32, id int32) []int32 {
	if d.pruneIdxSize == 0 || id < 0 {
		return ids
	}
	if d.pruneIdxSize > 0 {
		mapped, ok := d.pruneIdx[id]
		if !ok {
			return ids
		}
		id = mapped
	}
	return append(ids, d.nwords+id)
}

// tokenize splits on the same whitespace set the fastText tools use and
// terminates the line with the end-of-sentence token.
func tokenize(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '\n', '\r', '\t', '\v', '\f', 0:
			return true
		}
		return false
	})
	return append(tokens, eos)
}

// hash is 32-bit FNV-1a over sign-extended bytes.
func hash(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(int8(s[i]))
		h *= 16777619
	}
	return h
}
