package scriptio

import (
	"bytes"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/logger"
	"github.com/wfunc/slot-replay/internal/replay"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rawScript 脚本文件中的一条记录，可选字段为null时忽略
type rawScript struct {
	Index              *int         `json:"index"`
	Script             []slot.Board `json:"script"`
	Stop               int          `json:"stop"`
	Payout             *float64     `json:"payout"`
	PayoutID           *int         `json:"payout_id"`
	SpecialMultipliers *int         `json:"special_multipliers"`
}

type rawScriptSet struct {
	Base []rawScript `json:"base"`
	Free []rawScript `json:"free"`
}

// Load 读取脚本文件
func Load(path string) (*replay.ScriptSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrScriptNotFound, "脚本文件不存在: %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrInvalidScript, "读取脚本文件失败: %s", path)
	}
	return Parse(data)
}

// Read 从输入流读取脚本
func Read(r io.Reader) (*replay.ScriptSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidScript, "读取脚本失败")
	}
	return Parse(data)
}

// Parse 解析脚本JSON
// 支持顶层直接包含 base/free，也支持外层包一层 {"result": {...}}
func Parse(data []byte) (*replay.ScriptSet, error) {
	var wrapper struct {
		Result jsoniter.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidScript, "脚本JSON格式错误")
	}

	payload := data
	if len(wrapper.Result) > 0 && !bytes.Equal(bytes.TrimSpace(wrapper.Result), []byte("null")) {
		payload = wrapper.Result
	}

	var raw rawScriptSet
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidScript, "脚本JSON格式错误")
	}

	set := replay.NewScriptSet()
	if err := collect(set.Base, raw.Base, false); err != nil {
		return nil, err
	}
	if err := collect(set.Free, raw.Free, true); err != nil {
		return nil, err
	}
	return set, nil
}

func collect(dst map[int]*replay.Script, records []rawScript, free bool) error {
	section := "base"
	if free {
		section = "free"
	}

	for i, rec := range records {
		if rec.Index == nil {
			return errors.Newf(errors.ErrInvalidScript, "%s 第 %d 条记录缺少index", section, i)
		}

		s := &replay.Script{
			Index:  *rec.Index,
			Boards: rec.Script,
			Stop:   rec.Stop,
			IsFree: free,
		}
		if rec.Payout != nil {
			s.Payout = *rec.Payout
		}
		if rec.PayoutID != nil {
			s.PayoutID = *rec.PayoutID
		}
		if rec.SpecialMultipliers != nil {
			s.SpecialMultipliers = *rec.SpecialMultipliers
		}
		s.Normalize()

		if _, dup := dst[s.Index]; dup {
			logger.Warnf("%s 脚本index重复，后者覆盖前者: %d", section, s.Index)
		}
		dst[s.Index] = s
	}
	return nil
}
