package replay

import (
	"sort"

	"github.com/wfunc/slot-replay/internal/game/slot"
)

// DuplicateGroup 首盘面相同的一组脚本
type DuplicateGroup struct {
	Board   slot.Board `json:"board"`
	Indices []int      `json:"indices"`
}

// FirstBoardReport 首盘面唯一性检查结果
type FirstBoardReport struct {
	Total      int              `json:"total"`
	Unique     int              `json:"unique"`
	Duplicates []DuplicateGroup `json:"duplicates"`
}

// AllUnique 没有重复的首盘面
func (r FirstBoardReport) AllUnique() bool {
	return len(r.Duplicates) == 0
}

// CheckFirstBoardUniqueness 按首盘面分组，报告被多个脚本共用的首盘面
// 没有盘面的脚本不参与检查；每组内index升序，各组按最小index排序
func CheckFirstBoardUniqueness(scripts map[int]*Script) FirstBoardReport {
	report := FirstBoardReport{Total: len(scripts), Duplicates: []DuplicateGroup{}}

	groups := make(map[string]*DuplicateGroup)
	for index, s := range scripts {
		if s == nil || len(s.Boards) == 0 {
			continue
		}
		key := s.Boards[0].Key()
		g, ok := groups[key]
		if !ok {
			g = &DuplicateGroup{Board: s.Boards[0].Clone()}
			groups[key] = g
		}
		g.Indices = append(g.Indices, index)
	}
	report.Unique = len(groups)

	for _, g := range groups {
		if len(g.Indices) < 2 {
			continue
		}
		sort.Ints(g.Indices)
		report.Duplicates = append(report.Duplicates, *g)
	}
	sort.Slice(report.Duplicates, func(i, j int) bool {
		return report.Duplicates[i].Indices[0] < report.Duplicates[j].Indices[0]
	})
	return report
}
