package goes

import (
	"sort"
	"time"
)

// GroupKey is the identity shared by the 16 band files of one scan.
type GroupKey struct {
	Satellite string
	Region    string
	StartedAt time.Time
}

// ScanGroup is a set of band files believed to form one scan. It is the
// unit of work for the parallel search engine; completeness is validated
// at assembly, not here, so a short or duplicated group survives grouping
// and fails downstream as a recoverable per-group error.
type ScanGroup struct {
	Key       GroupKey
	Filepaths []string
}

// InvalidFile records an object key that could not be parsed and therefore
// could not join any group.
type InvalidFile struct {
	Filepath string
	Err      error
}

// GroupFilepaths partitions object keys into scan groups by
// (satellite, region, start time). Output order is deterministic:
// groups sorted by satellite, region, then start time, and filepaths
// within a group sorted by channel. Unparseable keys are returned
// separately rather than silently dropped.
func GroupFilepaths(filepaths []string) ([]ScanGroup, []InvalidFile) {
	byKey := make(map[GroupKey][]FileID)
	var invalid []InvalidFile

	for _, fp := range filepaths {
		id, err := ParseFilename(fp)
		if err != nil {
			invalid = append(invalid, InvalidFile{Filepath: fp, Err: err})
			continue
		}
		byKey[id.Key()] = append(byKey[id.Key()], id)
	}

	groups := make([]ScanGroup, 0, len(byKey))
	for key, ids := range byKey {
		sort.Slice(ids, func(i, j int) bool { return ids[i].Channel < ids[j].Channel })
		paths := make([]string, len(ids))
		for i, id := range ids {
			paths[i] = id.Filepath
		}
		groups = append(groups, ScanGroup{Key: key, Filepaths: paths})
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a.Satellite != b.Satellite {
			return a.Satellite < b.Satellite
		}
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.StartedAt.Before(b.StartedAt)
	})
	return groups, invalid
}
