// Package record rebuilds multi-line statement records. A statement line is
// first classified by its institution into a Line; Step then folds the
// classified lines into Partial records one at a time.
//
// Step is a pure function: it never mutates the State it is given, so the
// accumulator can be driven, replayed and tested without any parser around
// it.
package record

// Kind is the classification of a single statement line.
type Kind int

const (
	// KindIgnore lines carry nothing the accumulator can use.
	KindIgnore Kind = iota
	// KindSkip lines are headers, footers and page furniture.
	KindSkip
	// KindPrimary lines open a record and may carry its amount.
	KindPrimary
	// KindDateAnchor lines are bare dates that open a record.
	KindDateAnchor
	// KindTime lines carry the time (and optionally the auth code).
	KindTime
	// KindCode lines carry a bare document or authorization number.
	KindCode
	// KindAmount lines carry the amount of the open record.
	KindAmount
	// KindCard lines carry the last four digits of a card.
	KindCard
	// KindText lines continue the description of the open record.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindPrimary:
		return "primary"
	case KindDateAnchor:
		return "date"
	case KindTime:
		return "time"
	case KindCode:
		return "code"
	case KindAmount:
		return "amount"
	case KindCard:
		return "card"
	case KindText:
		return "text"
	default:
		return "ignore"
	}
}

// Trigger selects when a record is considered finished.
type Trigger int

const (
	// FinalizeOnNextDate emits a record when the next record starts or the
	// input ends.
	FinalizeOnNextDate Trigger = iota
	// FinalizeOnAmount emits a record as soon as its amount is known.
	FinalizeOnAmount
)

func (t Trigger) String() string {
	if t == FinalizeOnAmount {
		return "amount"
	}
	return "date"
}

// Line is a classified statement line. Only the fields relevant to Kind are
// set.
type Line struct {
	Kind     Kind
	Raw      string
	Date     string
	Time     string
	AuthCode string
	Category string
	Amount   string
	Sign     string
	Balance  string
	Card     string
	DocNo    string
	Text     string
}

// Partial is a record under construction.
type Partial struct {
	Date        string
	Time        string
	AuthCode    string
	Category    string
	Description []string
	Amount      string
	Sign        string
	Balance     string
	Card        string
	DocNo       string
	Complete    bool
}

// Valid reports whether the record has enough data to be finalized.
func (p Partial) Valid() bool {
	return p.Date != "" && p.Amount != ""
}

// State is the accumulator state. A closed State holds no record.
type State struct {
	Open bool
	Rec  Partial
}

// Step applies one classified line to state and returns the next state and,
// when a record was finished by this line, that record.
func Step(state State, line Line, trigger Trigger) (State, *Partial) {
	switch line.Kind {
	case KindSkip, KindIgnore:
		return state, nil

	case KindPrimary:
		emitted := emitIfValid(state)
		rec := Partial{
			Date:     line.Date,
			Time:     line.Time,
			AuthCode: line.AuthCode,
			Category: line.Category,
			Amount:   line.Amount,
			Sign:     line.Sign,
			Balance:  line.Balance,
			DocNo:    line.DocNo,
		}
		if line.Text != "" {
			rec.Description = []string{line.Text}
		}
		if rec.Amount != "" {
			rec.Complete = true
			if trigger == FinalizeOnAmount {
				// Nothing stays open: the previous record is either emitted
				// or dropped and the new one is already complete.
				if emitted == nil {
					return State{}, &rec
				}
				return State{Open: true, Rec: rec}, emitted
			}
		}
		return State{Open: true, Rec: rec}, emitted

	case KindDateAnchor:
		emitted := emitIfValid(state)
		rec := Partial{Date: line.Date}
		if line.Text != "" {
			rec.Description = []string{line.Text}
		}
		return State{Open: true, Rec: rec}, emitted

	case KindTime:
		if !state.Open {
			return state, nil
		}
		rec := clone(state.Rec)
		if rec.Time == "" {
			rec.Time = line.Time
			if line.AuthCode != "" {
				rec.AuthCode = line.AuthCode
			}
		} else {
			rec.Description = append(rec.Description, line.Raw)
		}
		return State{Open: true, Rec: rec}, nil

	case KindCode:
		if !state.Open {
			return state, nil
		}
		rec := clone(state.Rec)
		switch {
		case line.DocNo != "" && rec.DocNo == "":
			rec.DocNo = line.DocNo
		case line.AuthCode != "" && rec.AuthCode == "":
			rec.AuthCode = line.AuthCode
		default:
			rec.Description = append(rec.Description, line.Raw)
		}
		return State{Open: true, Rec: rec}, nil

	case KindAmount:
		if !state.Open {
			return state, nil
		}
		rec := clone(state.Rec)
		if rec.Complete && rec.Amount != "" {
			// The first amount wins; a later one is kept as text.
			rec.Description = append(rec.Description, line.Raw)
			return State{Open: true, Rec: rec}, nil
		}
		rec.Amount = line.Amount
		rec.Sign = line.Sign
		if line.Balance != "" {
			rec.Balance = line.Balance
		}
		if line.Text != "" {
			rec.Description = append(rec.Description, line.Text)
		}
		rec.Complete = true
		if trigger == FinalizeOnAmount && rec.Valid() {
			return State{}, &rec
		}
		return State{Open: true, Rec: rec}, nil

	case KindCard:
		if !state.Open {
			return state, nil
		}
		rec := clone(state.Rec)
		rec.Card = line.Card
		return State{Open: true, Rec: rec}, nil

	case KindText:
		if !state.Open {
			return state, nil
		}
		text := line.Text
		if text == "" {
			text = line.Raw
		}
		if text == "" {
			return state, nil
		}
		rec := clone(state.Rec)
		rec.Description = append(rec.Description, text)
		return State{Open: true, Rec: rec}, nil
	}
	return state, nil
}

// Flush returns the open record if it is valid. It is called once at the end
// of input.
func Flush(state State) *Partial {
	return emitIfValid(state)
}

func emitIfValid(state State) *Partial {
	if !state.Open || !state.Rec.Valid() {
		return nil
	}
	rec := clone(state.Rec)
	return &rec
}

func clone(p Partial) Partial {
	if p.Description != nil {
		p.Description = append([]string(nil), p.Description...)
	}
	return p
}
