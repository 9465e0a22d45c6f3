package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// OFXParser parses OFX/QFX bank and credit card statements.
type OFXParser struct{}

const ofxDateFormat = "01/02/2006"

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Parse reads every bank and credit card statement in an OFX document.
func (p *OFXParser) Parse(r io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX: %w", err)
	}

	// ofxgo rejects leading blank lines before the header.
	resp, err := ofxgo.ParseResponse(strings.NewReader(strings.TrimLeft(string(content), " \t\r\n")))
	if err != nil {
		return nil, fmt.Errorf("parsing OFX: %w", err)
	}

	var txns []model.Transaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		converted, err := convertOFX(stmt.BankTranList.Transactions)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", stmt.BankAcctFrom.AcctID, err)
		}
		txns = append(txns, converted...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		converted, err := convertOFX(stmt.BankTranList.Transactions)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", stmt.CCAcctFrom.AcctID, err)
		}
		txns = append(txns, converted...)
	}

	slog.Debug("Parsed OFX", "transactions", len(txns), "bank_statements", len(resp.Bank), "card_statements", len(resp.CreditCard))
	return txns, nil
}

func convertOFX(in []ofxgo.Transaction) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0, len(in))
	for _, tx := range in {
		amount, err := decimal.NewFromString(tx.TrnAmt.Rat.FloatString(2))
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parsing amount: %w", tx.FiTID, err)
		}
		out = append(out, model.Transaction{
			Date:        tx.DtPosted.Format(ofxDateFormat),
			Description: ofxDescription(tx),
			Amount:      amount,
		})
	}
	return out, nil
}

// ofxDescription joins NAME (or PAYEE when NAME is empty) and MEMO, which
// is roughly what banks print on a CSV export.
func ofxDescription(tx ofxgo.Transaction) string {
	name := string(tx.Name)
	if name == "" && tx.Payee != nil {
		name = string(tx.Payee.Name)
	}
	if memo := string(tx.Memo); memo != "" && !strings.EqualFold(memo, name) {
		name += " " + memo
	}
	return NormalizeDescription(name)
}
