package parser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
)

// Base provides the pieces shared by every strategy. Strategies embed it:
//
//	type Parser struct {
//		parser.Base
//	}
type Base struct {
	bankName string
	logger   logging.Logger
}

// NewBase creates a Base for bankName. A nil logger uses the default adapter.
func NewBase(bankName string, logger logging.Logger) Base {
	return Base{
		bankName: bankName,
		logger:   logging.OrDefault(logger).WithField(logging.FieldBank, bankName),
	}
}

// BankName implements Named.
func (b *Base) BankName() string {
	return b.bankName
}

// SetLogger replaces the logger.
func (b *Base) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger.
func (b *Base) GetLogger() logging.Logger {
	return b.logger
}
