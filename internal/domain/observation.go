package domain

import "github.com/shopspring/decimal"

// NonRepeatableReadResult holds two reads of the same row taken inside one
// reader transaction, with a writer commit sequenced between them.
type NonRepeatableReadResult struct {
	Isolation  IsolationLevel
	FirstRead  decimal.Decimal
	SecondRead decimal.Decimal
	Anomaly    bool
}

func NewNonRepeatableReadResult(isolation IsolationLevel, first, second decimal.Decimal) NonRepeatableReadResult {
	return NonRepeatableReadResult{
		Isolation:  isolation,
		FirstRead:  first,
		SecondRead: second,
		Anomaly:    !first.Equal(second),
	}
}

// PhantomReadResult holds two row counts for the same predicate taken inside
// one reader transaction, with a writer insert sequenced between them.
type PhantomReadResult struct {
	Isolation   IsolationLevel
	FirstCount  int
	SecondCount int
	Anomaly     bool
}

func NewPhantomReadResult(isolation IsolationLevel, first, second int) PhantomReadResult {
	return PhantomReadResult{
		Isolation:   isolation,
		FirstCount:  first,
		SecondCount: second,
		Anomaly:     first != second,
	}
}
