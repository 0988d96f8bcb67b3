package domain

import "encoding/json"

type Memorable interface {
	ToJson() string
	FromJson(jstr string) error
}

type Memo struct {
	Key  string `json:"key"`
	Memo string `json:"memo"`
}

// MonitorMemo is the outcome of the latest treasury check.
type MonitorMemo struct {
	CheckTime      int64  `json:"check_time"`
	State          string `json:"state"`
	InTreasury     string `json:"in_treasury"`
	AllowedForPool string `json:"allowed_for_pool"`
}

func (obj *MonitorMemo) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *MonitorMemo) FromJson(jstr string) error {
	err := json.Unmarshal([]byte(jstr), obj)
	return err
}
