//go:build race

package buildinfo

func init() {
	Info.RaceDetector = true
}
