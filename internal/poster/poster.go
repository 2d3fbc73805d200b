// Package poster runs one post cycle: pick a persona, source a transaction,
// render the image, compose the caption and deliver it.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"TransferCast/internal/model"
	"TransferCast/internal/notifier"
	"TransferCast/internal/recorder"

	"github.com/shopspring/decimal"
)

// ErrNoPersonas is reported when the persona set is empty.
var ErrNoPersonas = errors.New("no personas loaded")

// Outcome classifies a post cycle.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// PersonaPicker picks the persona a post is attributed to.
type PersonaPicker interface {
	Pick() (model.Persona, bool)
}

// TransactionSource supplies the amount and id of a post.
type TransactionSource interface {
	Next(ctx context.Context) model.TransactionRecord
}

// Renderer draws the image for an amount.
type Renderer interface {
	Render(amount int64) model.Artifact
}

// PhotoSender delivers a photo post.
type PhotoSender interface {
	SendPhoto(ctx context.Context, p notifier.Photo) error
}

// Result is the outcome of one post cycle. Errors are reported here and in the
// log, never returned.
type Result struct {
	Outcome     Outcome
	Persona     model.Persona
	Transaction model.TransactionRecord
	WorkerShare decimal.Decimal
	Fallback    bool
	Caption     string
	Err         error
}

// Poster wires the collaborators of a post cycle.
type Poster struct {
	Personas    PersonaPicker
	Source      TransactionSource
	Renderer    Renderer
	Sender      PhotoSender
	Recorder    recorder.Recorder
	ExplorerURL string
	ShareRate   decimal.Decimal
}

// WorkerShare returns amount × rate rounded to two decimals.
func WorkerShare(amount int64, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(amount).Mul(rate).Round(2)
}

// PostOnce runs a full cycle and records its outcome.
func (p *Poster) PostOnce(ctx context.Context) (res Result) {
	defer p.record(&res)
	defer recoverInto(&res)

	persona, ok := p.Personas.Pick()
	if !ok {
		log.Printf("[WARN] skip post: %v", ErrNoPersonas)
		return Result{Outcome: OutcomeSkipped, Err: ErrNoPersonas}
	}
	tx := p.Source.Next(ctx)
	art := p.Renderer.Render(tx.Amount)
	return p.Compose(ctx, persona, tx, art)
}

// Compose builds the caption and delivers the artifact. Delivery is attempted once.
func (p *Poster) Compose(ctx context.Context, persona model.Persona, tx model.TransactionRecord, art model.Artifact) (res Result) {
	res = Result{Persona: persona, Transaction: tx, Fallback: art.Fallback}
	defer recoverInto(&res)

	res.WorkerShare = WorkerShare(tx.Amount, p.ShareRate)
	res.Caption = notifier.FormatTransferCaption(persona, tx, res.WorkerShare, p.ExplorerURL)

	err := p.Sender.SendPhoto(ctx, notifier.Photo{
		Image:     art.Bytes,
		Filename:  art.Filename,
		Caption:   res.Caption,
		ParseMode: "HTML",
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("deliver: %w", err)
		log.Printf("[ERROR] post failed: nickname=%q team=%q amount=%d share=%s tx=%s origin=%s fallback_render=%v: %+v",
			persona.Nickname, persona.Team, tx.Amount, res.WorkerShare, tx.ID, tx.Origin, art.Fallback, err)
		return res
	}

	res.Outcome = OutcomeDelivered
	log.Printf("[INFO] posted +%d$ for %s (%s tx %s)", tx.Amount, persona.Nickname, tx.Origin, tx.ID)
	return res
}

func recoverInto(res *Result) {
	if r := recover(); r != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("panic: %v", r)
		log.Printf("[ERROR] post cycle panic: %v\n%s", r, debug.Stack())
	}
}

func (p *Poster) record(res *Result) {
	if p.Recorder == nil {
		return
	}
	evt := &recorder.PostEvent{
		Outcome:        string(res.Outcome),
		Nickname:       res.Persona.Nickname,
		Team:           res.Persona.Team,
		Amount:         res.Transaction.Amount,
		WorkerShare:    res.WorkerShare.String(),
		TxID:           res.Transaction.ID,
		Origin:         string(res.Transaction.Origin),
		FallbackRender: res.Fallback,
	}
	if res.Err != nil {
		evt.Error = res.Err.Error()
	}
	if err := p.Recorder.RecordPost(evt); err != nil {
		log.Printf("[ERROR] record post: %v", err)
	}
}
