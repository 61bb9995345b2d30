package game

import (
	"encoding/json"
	"fmt"
)

// Role 表示玩家的秘密身份，開局前為 RoleNone
type Role int

const (
	RoleNone Role = iota
	RoleInvestigator
	RoleCultist
)

func (r Role) String() string {
	switch r {
	case RoleInvestigator:
		return "investigator"
	case RoleCultist:
		return "cultist"
	default:
		return ""
	}
}

// Wins 判斷該身份是否屬於獲勝陣營
func (r Role) Wins(w Winner) bool {
	switch w {
	case WinnerInvestigators:
		return r == RoleInvestigator
	case WinnerCultists:
		return r == RoleCultist
	default:
		return false
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*r = RoleNone
		return nil
	}
	switch *s {
	case "investigator":
		*r = RoleInvestigator
	case "cultist":
		*r = RoleCultist
	default:
		return fmt.Errorf("unknown role %q", *s)
	}
	return nil
}

// CardType 描述調查牌的牌面
type CardType int

const (
	CardFutile CardType = iota
	CardElderSign
	CardCthulhu
)

func (c CardType) String() string {
	switch c {
	case CardFutile:
		return "futile"
	case CardElderSign:
		return "elder_sign"
	case CardCthulhu:
		return "cthulhu"
	default:
		return "unknown"
	}
}

// Label 回傳寫入行動紀錄時使用的名稱
func (c CardType) Label() string {
	switch c {
	case CardElderSign:
		return "Elder Sign"
	case CardCthulhu:
		return "Cthulhu"
	default:
		return "Futile Investigation"
	}
}

func (c CardType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CardType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "futile":
		*c = CardFutile
	case "elder_sign":
		*c = CardElderSign
	case "cthulhu":
		*c = CardCthulhu
	default:
		return fmt.Errorf("unknown card type %q", s)
	}
	return nil
}

// Winner 表示獲勝陣營，遊戲未結束時為 WinnerNone
type Winner int

const (
	WinnerNone Winner = iota
	WinnerInvestigators
	WinnerCultists
)

func (w Winner) String() string {
	switch w {
	case WinnerInvestigators:
		return "investigators"
	case WinnerCultists:
		return "cultists"
	default:
		return ""
	}
}

func (w Winner) MarshalJSON() ([]byte, error) {
	if w == WinnerNone {
		return []byte("null"), nil
	}
	return json.Marshal(w.String())
}

func (w *Winner) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*w = WinnerNone
		return nil
	}
	switch *s {
	case "investigators":
		*w = WinnerInvestigators
	case "cultists":
		*w = WinnerCultists
	default:
		return fmt.Errorf("unknown winner %q", *s)
	}
	return nil
}

// Card 表示一張調查牌
type Card struct {
	Type     CardType `json:"type"`
	Revealed bool     `json:"revealed"`
}

// Declaration 是玩家本回合公開宣稱的牌數，可以說謊
type Declaration struct {
	ElderSigns int `json:"elderSigns"`
	Cthulhu    int `json:"cthulhu"`
}

// Player 表示房間內的一名玩家
type Player struct {
	ID          string
	Name        string
	Role        Role
	Cards       []Card
	Declaration *Declaration
	IsHost      bool
	Connected   bool
	IsBot       bool
	AccountID   int64
}

// UnrevealedCount 回傳尚未翻開的牌數
func (p *Player) UnrevealedCount() int {
	count := 0
	for _, c := range p.Cards {
		if !c.Revealed {
			count++
		}
	}
	return count
}

// CountUnrevealed 回傳特定牌面且尚未翻開的數量
func (p *Player) CountUnrevealed(t CardType) int {
	count := 0
	for _, c := range p.Cards {
		if !c.Revealed && c.Type == t {
			count++
		}
	}
	return count
}

// RevealedTypes 依手牌順序回傳已翻開的牌面
func (p *Player) RevealedTypes() []CardType {
	types := make([]CardType, 0)
	for _, c := range p.Cards {
		if c.Revealed {
			types = append(types, c.Type)
		}
	}
	return types
}

func (p *Player) unrevealedIndices() []int {
	indices := make([]int, 0, len(p.Cards))
	for i, c := range p.Cards {
		if !c.Revealed {
			indices = append(indices, i)
		}
	}
	return indices
}

func (p *Player) resetForLobby() {
	p.Role = RoleNone
	p.Cards = nil
	p.Declaration = nil
}
