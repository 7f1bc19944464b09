package service

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"go.uber.org/zap"
)

// loadCompany builds the letterhead once at startup. A missing or unreadable
// logo is logged and the document renders without it.
func loadCompany(cfg config.CompanyConfig, log *zap.Logger) render.Company {
	company := render.Company{
		Name:        cfg.Name,
		Tagline:     cfg.Tagline,
		Address:     cfg.Address,
		Email:       cfg.Email,
		Phone:       cfg.Phone,
		Website:     cfg.Website,
		TaxID:       cfg.TaxID,
		BankName:    cfg.BankName,
		BankAccount: cfg.BankAccount,
		BankIFSC:    cfg.BankIFSC,
		BankBranch:  cfg.BankBranch,
		BankSwift:   cfg.BankSwift,
		Signatory:   cfg.Signatory,
	}

	path := strings.TrimSpace(cfg.LogoPath)
	if path == "" {
		return company
	}
	logo, err := os.ReadFile(path)
	if err != nil {
		log.Warn("company logo unreadable", zap.String("path", path), zap.Error(err))
		return company
	}
	kind, err := filetype.Image(logo)
	if err != nil || kind == filetype.Unknown {
		log.Warn("company logo is not an image", zap.String("path", path))
		return company
	}

	company.LogoBytes = logo
	company.LogoDataURI = "data:" + kind.MIME.Value + ";base64," + base64.StdEncoding.EncodeToString(logo)
	return company
}
