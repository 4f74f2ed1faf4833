package slot

import (
	"fmt"
	"strings"
)

// ValidationRule 盘面校验规则
type ValidationRule string

const (
	RuleHeight        ValidationRule = "height"
	RuleWidth         ValidationRule = "width"
	RulePadding       ValidationRule = "padding"
	RuleSymbol        ValidationRule = "symbol"
	RuleGoldenEdge    ValidationRule = "golden_edge"
	RuleGoldenCount   ValidationRule = "golden_count"
	RuleSpecialColumn ValidationRule = "special_column"
)

// BoardValidationError 盘面结构错误
type BoardValidationError struct {
	Rule      ValidationRule `json:"rule"`
	Row       int            `json:"row"`
	Col       int            `json:"col"`
	Column    int            `json:"column"`
	Positions []Position     `json:"positions,omitempty"`
	Message   string         `json:"message"`
}

func (e *BoardValidationError) Error() string {
	return e.Message
}

// BoardValidator 不规则盘面校验器
type BoardValidator struct {
	config *GameConfig
}

// NewBoardValidator 创建校验器
func NewBoardValidator(config *GameConfig) *BoardValidator {
	return &BoardValidator{config: config}
}

// Validate 校验盘面，返回第一个违反的规则
func (v *BoardValidator) Validate(board Board) error {
	_, err := v.IsValidBoard(board, true)
	return err
}

// IsValidBoard 按顺序检查尺寸、填充位、格子内容、每列金色数量
// throwOnError为false时只返回结果，不返回错误
func (v *BoardValidator) IsValidBoard(board Board, throwOnError bool) (bool, error) {
	if err := v.check(board); err != nil {
		if throwOnError {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (v *BoardValidator) check(board Board) *BoardValidationError {
	cfg := v.config

	if len(board) != cfg.Height {
		return &BoardValidationError{
			Rule:    RuleHeight,
			Row:     -1,
			Col:     -1,
			Column:  -1,
			Message: fmt.Sprintf("wrong height: got %d, want %d", len(board), cfg.Height),
		}
	}
	for row := range board {
		if len(board[row]) != cfg.Width {
			return &BoardValidationError{
				Rule:    RuleWidth,
				Row:     row,
				Col:     -1,
				Column:  -1,
				Message: fmt.Sprintf("wrong width at row %d: got %d, want %d", row, len(board[row]), cfg.Width),
			}
		}
	}

	if pos, ok := v.firstPaddingViolation(board); !ok {
		return &BoardValidationError{
			Rule:    RulePadding,
			Row:     pos.Row,
			Col:     pos.Col,
			Column:  pos.Col,
			Message: fmt.Sprintf("invalid padding at %s", pos),
		}
	}

	special := cfg.IsFree() && cfg.Variant == VariantWays
	goldenCount := make([]int, cfg.Width)
	var nonGoldenSpecial []Position

	for row := 0; row < cfg.Height; row++ {
		for col := 0; col < cfg.Width; col++ {
			if cfg.IsPaddingCell(row, col) {
				continue
			}
			cell := board[row][col]
			if cell == CellEmpty || cell == SymbolScatter {
				continue
			}

			specialCol := special && col == cfg.SpecialColumn
			if IsGolden(cell) {
				goldenCount[col]++
			} else if specialCol {
				nonGoldenSpecial = append(nonGoldenSpecial, Position{Row: row, Col: col})
			}

			if IsGolden(cell) && (row == 0 || row == cfg.Height-1) && !specialCol {
				return &BoardValidationError{
					Rule:    RuleGoldenEdge,
					Row:     row,
					Col:     col,
					Column:  col,
					Message: fmt.Sprintf("golden symbol %d not allowed at %s", cell, Position{Row: row, Col: col}),
				}
			}

			if cell == SymbolWild {
				continue
			}
			if !cfg.HasSymbol(BaseSymbol(cell)) {
				return &BoardValidationError{
					Rule:    RuleSymbol,
					Row:     row,
					Col:     col,
					Column:  col,
					Message: fmt.Sprintf("invalid symbol %d at %s", cell, Position{Row: row, Col: col}),
				}
			}
		}
	}

	if len(nonGoldenSpecial) > 0 {
		parts := make([]string, len(nonGoldenSpecial))
		for i, p := range nonGoldenSpecial {
			parts[i] = p.String()
		}
		return &BoardValidationError{
			Rule:      RuleSpecialColumn,
			Row:       -1,
			Col:       cfg.SpecialColumn,
			Column:    cfg.SpecialColumn,
			Positions: nonGoldenSpecial,
			Message: fmt.Sprintf("column %d must be all golden in free game, non-golden at %s",
				cfg.SpecialColumn, strings.Join(parts, " ")),
		}
	}

	limit := cfg.MaxGoldenPerColumn
	if limit <= 0 {
		limit = 2
	}
	for col, n := range goldenCount {
		if special && col == cfg.SpecialColumn {
			continue
		}
		if n > limit {
			return &BoardValidationError{
				Rule:    RuleGoldenCount,
				Row:     -1,
				Col:     col,
				Column:  col,
				Message: fmt.Sprintf("column %d has %d golden symbols, max %d", col, n, limit),
			}
		}
	}

	return nil
}

// IsValidPadding 填充位与列高度配置完全一致
func (v *BoardValidator) IsValidPadding(board Board) bool {
	_, ok := v.firstPaddingViolation(board)
	return ok
}

func (v *BoardValidator) firstPaddingViolation(board Board) (Position, bool) {
	for row := 0; row < v.config.Height; row++ {
		for col := 0; col < v.config.Width; col++ {
			isPad := board.At(row, col) == CellPadding
			if isPad != v.config.IsPaddingCell(row, col) {
				return Position{Row: row, Col: col}, false
			}
		}
	}
	return Position{}, true
}

// NewPaddedBoard 创建按列高度填充好的空盘面
func (v *BoardValidator) NewPaddedBoard() Board {
	board := NewBoard(v.config.Height, v.config.Width)
	for row := range board {
		for col := range board[row] {
			if v.config.IsPaddingCell(row, col) {
				board[row][col] = CellPadding
			}
		}
	}
	return board
}
