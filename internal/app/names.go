package app

import (
	"math/rand/v2"
	"strings"
)

// NameGenerator produces display names and colours for new identities.
type NameGenerator interface {
	Name() string
	Color() string
}

// Palette is the fixed set of identity colours.
var Palette = []string{"#FBE8A6", "#F4976C", "#B4DFE5", "#D2FDFF", "#C5CBE3", "#A8D0E6"}

var words = []string{
	"acorn", "amber", "ant", "apple", "arch", "ash", "bay", "bean", "bear", "bee",
	"birch", "bird", "blue", "bolt", "brook", "bud", "cake", "calm", "cat", "cedar",
	"cliff", "cloud", "clove", "coral", "cove", "crow", "dawn", "deer", "dew", "dove",
	"dune", "elm", "ember", "fern", "fig", "finch", "fir", "fox", "frost", "gale",
	"glade", "gold", "hare", "hawk", "hazel", "hill", "ice", "ivy", "jade", "jay",
	"kelp", "kite", "lake", "lark", "leaf", "lily", "lime", "lynx", "maple", "mint",
	"moon", "moss", "moth", "oak", "ocean", "olive", "owl", "pearl", "pine", "plum",
	"pond", "quail", "rain", "reed", "robin", "rose", "sage", "sand", "seal", "sky",
	"snow", "star", "stone", "sun", "swan", "tide", "tiger", "vale", "wave", "wind",
	"wolf", "wren", "yak", "yew", "zinc",
}

// RandomNames joins two random words, like "mossfinch".
type RandomNames struct{}

func (RandomNames) Name() string {
	var b strings.Builder
	for range 2 {
		b.WriteString(words[rand.IntN(len(words))])
	}
	return b.String()
}

func (RandomNames) Color() string {
	return Palette[rand.IntN(len(Palette))]
}
