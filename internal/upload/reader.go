package upload

import (
	"io"
	"sync/atomic"
)

// progressReader reports the fraction of total bytes read so far.
type progressReader struct {
	r        io.Reader
	total    uint64
	read     atomic.Uint64
	onUpdate func(float64)
}

func newProgressReader(r io.Reader, total uint64, onUpdate func(float64)) *progressReader {
	return &progressReader{r: r, total: total, onUpdate: onUpdate}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		read := p.read.Add(uint64(n))
		frac := float64(read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		p.onUpdate(frac)
	}
	return n, err
}
