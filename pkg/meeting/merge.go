package meeting

import "sort"

// Merge combines a local and a remote transcript stream into one
// deduplicated, chronologically ordered sequence for display.
//
// Entries are keyed by transcript id; remote entries are inserted first and
// local entries second, so on an id collision the locally produced transcript
// supersedes the echo of itself arriving from the remote store. Neither
// input is mutated.
func Merge(local, remote []Transcript) []Transcript {
	merged := make(map[string]Transcript, len(local)+len(remote))
	for _, t := range remote {
		merged[t.ID()] = t
	}
	for _, t := range local {
		merged[t.ID()] = t
	}

	out := make([]Transcript, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp() < out[j].Timestamp()
	})
	return out
}
