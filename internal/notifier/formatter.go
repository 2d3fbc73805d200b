package notifier

import (
	"fmt"
	"strings"

	"TransferCast/internal/model"

	"github.com/shopspring/decimal"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatTransferCaption formats the caption of a transfer confirmation post.
func FormatTransferCaption(p model.Persona, tx model.TransactionRecord, workerShare decimal.Decimal, explorerURL string) string {
	var b strings.Builder
	b.WriteString("❗️ <b>Успешный залив</b> ❗️\n")
	b.WriteString(fmt.Sprintf("👤 <b>Никнейм:</b> %s\n", EscapeHTML(p.Nickname)))
	b.WriteString(fmt.Sprintf("👥 <b>Тимлидер:</b> %s\n", EscapeHTML(p.Team)))
	b.WriteString(fmt.Sprintf("🤑 <b>Сумма залива:</b> %d$\n", tx.Amount))
	b.WriteString(fmt.Sprintf("💲 <b>Часть воркера:</b> %s$\n", workerShare.String()))
	b.WriteString(fmt.Sprintf("🔗 <b>Транзакция:</b> <a href=\"%s%s\">TxID</a>",
		EscapeHTML(explorerURL), EscapeHTML(tx.ID)))
	return b.String()
}
