package clip_test

import (
	"fmt"

	"github.com/matzehuels/cgmap/pkg/render/clip"
	"github.com/matzehuels/cgmap/pkg/render/view"
)

// A zoomed view that straddles the origin of a 5 kb plasmid. A feature
// running through the origin is split into one piece per window.
func ExampleClip() {
	w := view.Windows{
		One: view.Window{Start: 4900, Stop: 5000},
		Two: view.Window{Start: 1, Stop: 150},
	}
	for _, s := range clip.Clip(clip.Interval{Start: 4950, Stop: 100}, w, 5000) {
		fmt.Printf("%d-%d %s first=%v last=%v\n", s.Start, s.Stop, s.Window, s.First, s.Last)
	}
	fmt.Println(clip.Visible(clip.Interval{Start: 2000, Stop: 2100}, w, 5000))
	// Output:
	// 4950-5000 one first=true last=false
	// 1-100 two first=false last=true
	// false
}
