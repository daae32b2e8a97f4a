package writing

// AnalyzeRequest is the payload of a writing analysis.
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,notblank,max=50000"`
}

// Analysis is a gamified review of a writing sample.
type Analysis struct {
	WriterLevel     int             `json:"writerLevel" validate:"required,min=1,max=10"`
	XPGained        int             `json:"xpGained" validate:"required,min=1"`
	WritingPowers   []WritingPower  `json:"writingPowers" validate:"required,min=1,dive"`
	QuestProgress   QuestProgress   `json:"questProgress"`
	MagicalElements MagicalElements `json:"magicalElements"`
	NextQuests      []Quest         `json:"nextQuests" validate:"dive"`
}

type WritingPower struct {
	Name        string   `json:"name" validate:"required"`
	Level       int      `json:"level" validate:"min=0,max=5"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

type QuestProgress struct {
	MainQuest    string   `json:"mainQuest"`
	Progress     float64  `json:"progress" validate:"min=0,max=100"`
	Achievements []string `json:"achievements"`
}

type MagicalElements struct {
	Spells []Spell `json:"spells" validate:"dive"`
}

type Spell struct {
	Name    string `json:"name"`
	Power   string `json:"power"`
	Example string `json:"example"`
}

type Quest struct {
	Title  string `json:"title"`
	Reward string `json:"reward"`
	Hint   string `json:"hint"`
}
