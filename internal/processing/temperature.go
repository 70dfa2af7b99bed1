package processing

// RawToTemperature converts an 8-bit sensor value to degrees given the
// calibrated range of the sensor.
func RawToTemperature(raw byte, minTemp, maxTemp float64) float64 {
	return minTemp + float64(raw)/255.0*(maxTemp-minTemp)
}

// TemperatureToRaw is the inverse mapping, clamped to the byte range.
func TemperatureToRaw(temp, minTemp, maxTemp float64) byte {
	if maxTemp <= minTemp {
		return 0
	}
	v := (temp - minTemp) * 255.0 / (maxTemp - minTemp)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
