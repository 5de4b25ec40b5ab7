package tgz

import (
	"context"

	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
)

// PollKind selects between a regular poll and a quiz.
type PollKind string

const (
	PollRegular PollKind = "regular"
	PollQuiz    PollKind = "quiz"
)

// Poll is a fluent builder for sendPoll.
type Poll struct {
	tg   *TGZ
	kind PollKind

	question             string
	questionParseMode    models.ParseMode
	options              []string
	anonymous            bool
	anonymousSet         bool
	multipleAnswers      bool
	correctOptionID      int
	correctSet           bool
	explanation          string
	explanationParseMode models.ParseMode
	closed               bool
	openPeriod           int
	closeDate            int64
}

// Question sets the poll question.
func (p *Poll) Question(question string) *Poll {
	p.question = question
	return p
}

// ParseMode sets the parse mode for both the question and the explanation.
func (p *Poll) ParseMode(mode models.ParseMode) *Poll {
	p.questionParseMode = mode
	p.explanationParseMode = mode
	return p
}

// AddAnswers appends answer options.
func (p *Poll) AddAnswers(answers ...string) *Poll {
	p.options = append(p.options, answers...)
	return p
}

// Anonymous controls voter anonymity. Polls are anonymous by default.
func (p *Poll) Anonymous(anonymous bool) *Poll {
	p.anonymous = anonymous
	p.anonymousSet = true
	return p
}

// MultipleAnswers allows selecting several options. Ignored for quizzes.
func (p *Poll) MultipleAnswers(multiple bool) *Poll {
	p.multipleAnswers = multiple
	return p
}

// CorrectAnswer sets the zero-based correct option. Quiz only.
func (p *Poll) CorrectAnswer(optionID int) *Poll {
	if p.kind == PollQuiz {
		p.correctOptionID = optionID
		p.correctSet = true
	}
	return p
}

// Explanation sets the text shown for wrong quiz answers. Quiz only.
func (p *Poll) Explanation(text string) *Poll {
	if p.kind == PollQuiz {
		p.explanation = text
	}
	return p
}

// Close marks the poll as already closed.
func (p *Poll) Close() *Poll {
	p.closed = true
	return p
}

// OpenPeriod limits how long the poll accepts votes, in seconds.
func (p *Poll) OpenPeriod(seconds int) *Poll {
	p.openPeriod = seconds
	return p
}

// CloseDate sets the unix timestamp when the poll closes.
func (p *Poll) CloseDate(timestamp int64) *Poll {
	p.closeDate = timestamp
	return p
}

// Send ships the poll to the chat of the bound update.
func (p *Poll) Send(ctx context.Context) (*APIResponse, error) {
	return p.SendTo(ctx, p.tg.Update().ChatID())
}

// SendTo ships the poll to an explicit chat.
func (p *Poll) SendTo(ctx context.Context, chatID int64) (*APIResponse, error) {
	if p.question == "" {
		return nil, errors.New("tgz: poll has no question")
	}
	if len(p.options) < 2 {
		return nil, errors.New("tgz: poll needs at least two answers")
	}
	params := map[string]any{
		"chat_id":  chatID,
		"question": p.question,
		"options":  p.options,
		"type":     string(p.kind),
	}
	if p.questionParseMode != "" {
		params["question_parse_mode"] = p.questionParseMode
	}
	if p.anonymousSet {
		params["is_anonymous"] = p.anonymous
	}
	if p.kind == PollQuiz {
		if p.correctSet {
			params["correct_option_id"] = p.correctOptionID
		}
		if p.explanation != "" {
			params["explanation"] = p.explanation
			if p.explanationParseMode != "" {
				params["explanation_parse_mode"] = p.explanationParseMode
			}
		}
	} else if p.multipleAnswers {
		params["allows_multiple_answers"] = true
	}
	if p.closed {
		params["is_closed"] = true
	}
	if p.openPeriod > 0 {
		params["open_period"] = p.openPeriod
	}
	if p.closeDate > 0 {
		params["close_date"] = p.closeDate
	}
	return p.tg.api.Call(ctx, "sendPoll", params)
}
