package generator

import "github.com/shouni/go-character-kit/pkg/domain"

// Assignment はランダム化後のスロット1つ分の最終状態なのだ。
type Assignment struct {
	ValueID *string `json:"value_id"`
	Value   *string `json:"value"`
	Color   *string `json:"color"`
}

// Results はスロット名ごとの Assignment です。
type Results map[string]Assignment

func assignmentOf(s *domain.SlotState) Assignment {
	c := s.Clone()
	a := Assignment{ValueID: c.ValueID, Value: c.Value}
	if color, ok := c.ActiveColor(); ok {
		a.Color = domain.Ptr(color)
	}
	return a
}
