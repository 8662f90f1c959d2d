package analyzer

import (
	"fmt"
	"math"
)

// Brightness thresholds on the 0-255 scale
const (
	darkThreshold   = 50
	brightThreshold = 200
)

// BrightnessProfile summarizes per-pixel brightness, mean(R,G,B)
type BrightnessProfile struct {
	Mean        float64 `json:"mean"`
	DarkRatio   float64 `json:"dark_ratio"`
	BrightRatio float64 `json:"bright_ratio"`
}

// Signals are the raw, unnormalized outputs of the four buffer scans
type Signals struct {
	PixelCount     int               `json:"pixel_count"`
	GradientMean   float64           `json:"gradient_mean"`
	Brightness     BrightnessProfile `json:"brightness"`
	MeanR          float64           `json:"mean_r"`
	MeanG          float64           `json:"mean_g"`
	MeanB          float64           `json:"mean_b"`
	LocalDeviation float64           `json:"local_deviation"`
}

// metricsCalculator implements MetricsCalculator. Each scan is a read-only
// pass over the buffer, so the four can share it across goroutines.
type metricsCalculator struct {
	pool *WorkerPool
}

// NewMetricsCalculator returns a calculator that fans scans out on pool.
// A nil pool runs them sequentially.
func NewMetricsCalculator(pool *WorkerPool) MetricsCalculator {
	return &metricsCalculator{pool: pool}
}

func luma(p []byte, i int) float64 {
	return float64(p[i])*0.299 + float64(p[i+1])*0.587 + float64(p[i+2])*0.114
}

func rgbSum(p []byte, i int) float64 {
	return float64(p[i]) + float64(p[i+1]) + float64(p[i+2])
}

// GradientMagnitudeMean averages sqrt(dx²+dy²) of luma against the right and
// lower neighbours over interior pixels. The 1-pixel border is skipped.
func (mc *metricsCalculator) GradientMagnitudeMean(buf *PixelBuffer) float64 {
	w, h, p := buf.width, buf.height, buf.pix
	stride := w * 4

	var sum float64
	count := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := (y*w + x) * 4
			g := luma(p, i)
			dx := math.Abs(g - luma(p, i+4))
			dy := math.Abs(g - luma(p, i+stride))
			sum += math.Sqrt(dx*dx + dy*dy)
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// BrightnessProfile computes mean brightness and the dark/bright pixel fractions
func (mc *metricsCalculator) BrightnessProfile(buf *PixelBuffer) BrightnessProfile {
	p := buf.pix
	n := buf.PixelCount()
	if n == 0 {
		return BrightnessProfile{}
	}

	var total float64
	dark, bright := 0, 0
	for i := 0; i < n*4; i += 4 {
		b := rgbSum(p, i) / 3
		total += b
		if b < darkThreshold {
			dark++
		}
		if b > brightThreshold {
			bright++
		}
	}

	count := float64(n)
	return BrightnessProfile{
		Mean:        total / count,
		DarkRatio:   float64(dark) / count,
		BrightRatio: float64(bright) / count,
	}
}

// ChannelMeans returns the arithmetic mean of R, G and B
func (mc *metricsCalculator) ChannelMeans(buf *PixelBuffer) (r, g, b float64) {
	p := buf.pix
	n := buf.PixelCount()
	if n == 0 {
		return 0, 0, 0
	}

	var sr, sg, sb uint64
	for i := 0; i < n*4; i += 4 {
		sr += uint64(p[i])
		sg += uint64(p[i+1])
		sb += uint64(p[i+2])
	}

	count := float64(n)
	return float64(sr) / count, float64(sg) / count, float64(sb) / count
}

// LocalDeviationMean averages |sum(RGB) - mean of the 8 neighbours' sums| over
// interior pixels. It responds to texture as much as to sensor noise.
func (mc *metricsCalculator) LocalDeviationMean(buf *PixelBuffer) float64 {
	w, h, p := buf.width, buf.height, buf.pix
	stride := w * 4

	var sum float64
	count := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := (y*w + x) * 4
			up, down := i-stride, i+stride
			neighbours := rgbSum(p, up-4) + rgbSum(p, up) + rgbSum(p, up+4) +
				rgbSum(p, i-4) + rgbSum(p, i+4) +
				rgbSum(p, down-4) + rgbSum(p, down) + rgbSum(p, down+4)
			sum += math.Abs(rgbSum(p, i) - neighbours/8)
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// CollectSignals runs the four scans, concurrently when a pool is attached,
// and joins before returning. A panic inside any scan is returned as an error.
func (mc *metricsCalculator) CollectSignals(buf *PixelBuffer) (Signals, error) {
	sig := Signals{PixelCount: buf.PixelCount()}
	failures := make([]error, 4)

	guard := func(slot int, scan func()) func() {
		return func() {
			defer func() {
				if r := recover(); r != nil {
					failures[slot] = fmt.Errorf("pixel scan %d panicked: %v", slot, r)
				}
			}()
			scan()
		}
	}

	jobs := []func(){
		guard(0, func() { sig.GradientMean = mc.GradientMagnitudeMean(buf) }),
		guard(1, func() { sig.Brightness = mc.BrightnessProfile(buf) }),
		guard(2, func() { sig.MeanR, sig.MeanG, sig.MeanB = mc.ChannelMeans(buf) }),
		guard(3, func() { sig.LocalDeviation = mc.LocalDeviationMean(buf) }),
	}

	if mc.pool != nil {
		mc.pool.RunAll(jobs...)
	} else {
		for _, job := range jobs {
			job()
		}
	}

	for _, err := range failures {
		if err != nil {
			return Signals{}, err
		}
	}
	return sig, nil
}
