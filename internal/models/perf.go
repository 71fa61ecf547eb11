package models

import "time"

// PerformanceSample is one reading of page vitals. Timings are in
// milliseconds, Memory in bytes. Samples are never persisted.
type PerformanceSample struct {
	FCP       float64   `json:"fcp"`
	LCP       float64   `json:"lcp"`
	FID       float64   `json:"fid"`
	CLS       float64   `json:"cls"`
	TTFB      float64   `json:"ttfb"`
	FPS       float64   `json:"fps"`
	Memory    float64   `json:"memory"`
	SampledAt time.Time `json:"sampled_at"`
}
