package model

// Origin indicates where a transaction record came from.
type Origin string

const (
	OriginLive      Origin = "live"
	OriginSynthetic Origin = "synthetic"
)

// TransactionRecord is the amount/id pair shown in a single post.
type TransactionRecord struct {
	Amount int64
	ID     string
	Origin Origin
}

// Persona is a (nickname, team lead) pair attributed to a post.
type Persona struct {
	Nickname string
	Team     string
}
