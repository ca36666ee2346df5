package domain

// Question is one entry of a room's fixed question list. The bank record
// carries the preamble and figure metadata the frontend needs to render a
// question faithfully.
type Question struct {
	Sn                  int    `json:"sn"`
	Subject             string `json:"subject"`
	HasPreamble         bool   `json:"has_preamble"`
	PreambleText        string `json:"preamble_text,omitempty"`
	Prompt              string `json:"question_text"`
	CorrectAnswer       string `json:"correct_answer"`
	HasQuestionFigure   bool   `json:"has_question_figure"`
	HasAnswerFigure     bool   `json:"has_answer_figure"`
	CalculationsPresent bool   `json:"calculations_present"`
}

// AnswerRecord is one logged submission. Immutable once appended to a room's
// answer log.
type AnswerRecord struct {
	Contestant    int    `json:"contestant"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
	QuestionIndex int    `json:"question_index"`
}

// BotAnswer is the simulated contestant's response to a single question.
type BotAnswer struct {
	Sn        int    `json:"sn"`
	BotAnswer string `json:"bot_answer"`
	IsCorrect bool   `json:"is_correct"`
}
