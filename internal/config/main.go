package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Directory = kingpin.Arg("directory", "Score directory containing a .mid and optional audio").Required().ExistingDir()
	Profile   = kingpin.Flag("profile", "Device profile: fast, constrained or auto").Default("auto").Short('P').Enum("fast", "constrained", "auto")
	Cadence   = kingpin.Flag("cadence", "Frame interval override, 0 uses the profile value").Default("0s").Duration()
	Budget    = kingpin.Flag("budget", "Frame budget override, 0 uses the profile value").Default("0s").Duration()
	Rate      = kingpin.Flag("rate", "Playback speed").Default("1.0").Short('r').Float64()
	Delay     = kingpin.Flag("delay", "Start delay").Default("1.5s").Short('d').Duration()
	Database  = kingpin.Flag("database", "Pin database path").Default("./pins.db").String()
	ViewBeats = kingpin.Flag("view-beats", "Beats visible across the screen").Default("16").Int64()
)

// Parse is called once from main; resolved values are injected into
// the components that need them.
func Parse() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}
