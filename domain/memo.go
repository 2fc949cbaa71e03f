package domain

import (
	"encoding/json"
	"time"
)

// Memorable is a value kept as a JSON memo under a fixed key.
type Memorable interface {
	ToJson() string
	FromJson(jstr string) error
}

type Memo struct {
	Key  string `json:"key"`
	Memo string `json:"memo"`
}

// HarvestMemo records the harvest bot's latest cycle.
type HarvestMemo struct {
	LastCheckTime   time.Time      `json:"last_check_time"`
	LastHarvestTime *time.Time     `json:"last_harvest_time"`
	LastResult      *HarvestResult `json:"last_result"`
	Cycles          uint64         `json:"cycles"`
}

func (obj *HarvestMemo) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *HarvestMemo) FromJson(jstr string) error {
	err := json.Unmarshal([]byte(jstr), obj)
	return err
}
