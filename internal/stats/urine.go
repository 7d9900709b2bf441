package stats

import "strings"

// UrineScale lists the urine clump size anchors from smallest to largest.
var UrineScale = []string{"1元", "50元", "100元", "500元", "拳頭"}

// UrineRangeSeparator joins two anchors to encode an intermediate size.
const UrineRangeSeparator = " ~ "

const urineFallback = 2.0

// UrineOrdinal maps a urine size label onto the numeric scale. An
// intermediate "lower ~ upper" label maps to lower+0.5. Anything unknown maps
// to the middle of the scale.
func UrineOrdinal(label string) float64 {
	label = strings.TrimSpace(label)
	if lower, _, ok := strings.Cut(label, "~"); ok {
		if idx := urineIndex(lower); idx >= 0 {
			return float64(idx) + 0.5
		}
		return urineFallback
	}
	if idx := urineIndex(label); idx >= 0 {
		return float64(idx)
	}
	return urineFallback
}

// UrineRange encodes the label between anchor i and i+1.
func UrineRange(i int) string {
	if i < 0 || i+1 >= len(UrineScale) {
		return ""
	}
	return UrineScale[i] + UrineRangeSeparator + UrineScale[i+1]
}

func urineIndex(label string) int {
	label = strings.TrimSpace(label)
	for i, anchor := range UrineScale {
		if anchor == label {
			return i
		}
	}
	return -1
}
