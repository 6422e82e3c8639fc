// Package i18n holds the user-facing message catalog. Portuguese is the
// wire default; English is served when the request negotiates it.
package i18n

import "fmt"

const (
	MsgNoFilesUploaded = "upload.none"
	MsgNoValidPDF      = "upload.no_valid_pdf"
	MsgFilesReceived   = "upload.received"
	MsgJobNotFound     = "job.not_found"
	MsgReportNotReady  = "report.not_ready"
	MsgInternalError   = "internal.error"
	MsgTooManyRequests = "rate.too_many"
)

var catalog = map[string]map[string]string{
	"pt": {
		MsgNoFilesUploaded: "Nenhum arquivo foi enviado",
		MsgNoValidPDF:      "Nenhum arquivo PDF válido enviado",
		MsgFilesReceived:   "%d arquivos recebidos para validação",
		MsgJobNotFound:     "Trabalho de validação não encontrado",
		MsgReportNotReady:  "Relatório ainda não disponível",
		MsgInternalError:   "Erro interno do servidor",
		MsgTooManyRequests: "Muitas requisições, tente novamente em instantes",
	},
	"en": {
		MsgNoFilesUploaded: "No files were uploaded",
		MsgNoValidPDF:      "No valid PDF files were uploaded",
		MsgFilesReceived:   "%d files received for validation",
		MsgJobNotFound:     "Validation job not found",
		MsgReportNotReady:  "Report not available yet",
		MsgInternalError:   "Internal server error",
		MsgTooManyRequests: "Too many requests, try again shortly",
	},
}

// T renders the message for the given locale, falling back to Portuguese
// when the locale or key is unknown.
func T(locale, key string, args ...any) string {
	msgs, ok := catalog[locale]
	if !ok {
		msgs = catalog["pt"]
	}
	msg, ok := msgs[key]
	if !ok {
		msg = catalog["pt"][key]
	}
	if msg == "" {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
