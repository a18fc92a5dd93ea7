package model

import "sort"

// Usable returns the free spaces that are at least minW wide and minH tall,
// largest area first. Slivers left between obstacles rarely fit anything,
// so reports and placement hints skip them.
func (r Result) Usable(minW, minH float64) []FreeSpace {
	var usable []FreeSpace
	for _, f := range r.Free {
		if f.Rect.Width >= minW && f.Rect.Height >= minH {
			usable = append(usable, f)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Rect.Area() > usable[j].Rect.Area()
	})
	return usable
}

// TotalArea returns the summed area of the given free spaces. Overlapping
// free spaces are counted more than once; use UnionArea for covered area.
func TotalArea(free []FreeSpace) float64 {
	var total float64
	for _, f := range free {
		total += f.Rect.Area()
	}
	return total
}
