package model

// DiffStat summarizes the diff of one file over a commit range.
type DiffStat struct {
	File    Path
	Hunks   int
	Added   int
	Deleted int
}
