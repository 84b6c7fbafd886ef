package upload

import "io"

// progressReader reports the fraction of bytes read each time the transport pulls a chunk
type progressReader struct {
	r          io.Reader
	size       int64
	read       int64
	onProgress func(float64)
}

func newProgressReader(r io.Reader, size int64, onProgress func(float64)) *progressReader {
	return &progressReader{r: r, size: size, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.onProgress != nil && p.size > 0 {
			p.onProgress(float64(p.read) / float64(p.size))
		}
	}
	return n, err
}
