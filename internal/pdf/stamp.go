// Package pdf stamps trainee names and certificate codes onto the course
// template PDFs, plus a QR code linking to the public verification page.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/skip2/go-qrcode"
)

// Stamper produces a personalized certificate from a template.
type Stamper interface {
	Stamp(template []byte, name, code string) ([]byte, error)
}

// TemplateStamper stamps the first page of the template: name centered,
// code at the top-right, verification QR at the bottom-right.
type TemplateStamper struct {
	// VerifyBaseURL is the public origin the QR code points at, e.g.
	// https://portal.example.com.
	VerifyBaseURL string
}

func NewTemplateStamper(verifyBaseURL string) *TemplateStamper {
	return &TemplateStamper{VerifyBaseURL: verifyBaseURL}
}

const (
	nameDesc = "fontname:Times-Bold, points:28, position:c, offset:0 10, fillcolor:#b7b8f0, scalefactor:1 abs, rotation:0"
	codeDesc = "fontname:Times-Bold, points:10, position:tr, offset:-40 -40, fillcolor:#000000, scalefactor:1 abs, rotation:0"
	qrDesc   = "position:br, offset:-36 36, scalefactor:0.1 abs, rotation:0"
)

func (s *TemplateStamper) Stamp(template []byte, name, code string) ([]byte, error) {
	nameWM, err := api.TextWatermark(name, nameDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("stamp name: %w", err)
	}
	out, err := addWatermark(template, nameWM)
	if err != nil {
		return nil, fmt.Errorf("stamp name: %w", err)
	}

	codeWM, err := api.TextWatermark(code, codeDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("stamp code: %w", err)
	}
	out, err = addWatermark(out, codeWM)
	if err != nil {
		return nil, fmt.Errorf("stamp code: %w", err)
	}

	png, err := qrcode.Encode(VerifyURL(s.VerifyBaseURL, code), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}
	qrWM, err := api.ImageWatermarkForReader(bytes.NewReader(png), qrDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("stamp qr: %w", err)
	}
	out, err = addWatermark(out, qrWM)
	if err != nil {
		return nil, fmt.Errorf("stamp qr: %w", err)
	}
	return out, nil
}

// VerifyURL is the public verification address encoded in QR codes.
func VerifyURL(baseURL, code string) string {
	return trimRightSlash(baseURL) + "/verify?code=" + code
}

func addWatermark(in []byte, wm *model.Watermark) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(in), &buf, []string{"1"}, wm, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trimRightSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
