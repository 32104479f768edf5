package orientation

import (
	"math"
)

// Sample is one raw tilt reading from the sensor, in radians.
// Pitch and roll are assumed to stay within (-pi, pi); there is no
// wraparound handling downstream.
type Sample struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Source is anything that can provide tilt samples over time:
// mock source, IMU source, NMEA tilt sensor on a serial port.
type Source interface {
	Next() (Sample, error)
}

// SampleFromAccel computes pitch and roll from accelerometer data only,
// using the standard tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func SampleFromAccel(ax, ay, az float64) Sample {
	return Sample{
		Roll:  math.Atan2(ay, az),
		Pitch: math.Atan2(-ax, math.Sqrt(ay*ay+az*az)),
	}
}
