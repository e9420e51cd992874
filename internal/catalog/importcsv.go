package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// CSV一括登録。想定フォーマット:
//
//	name,category,rent_per_day
//	Dune,Fiction,10
//
// Excel出力のCP932(Shift_JIS)とUTF-8(BOM付き可)の両方を受け付ける。
func (s *Service) ImportBooksCSV(ctx context.Context, r io.Reader) (ImportBooksResponse, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ImportBooksResponse{}, ErrInvalid("failed to read csv body")
	}
	if len(raw) == 0 {
		return ImportBooksResponse{}, ErrInvalid("csv is empty")
	}

	cr := csv.NewReader(decodeCSV(raw))
	cr.FieldsPerRecord = -1 // 行ごとに列数チェックする
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return ImportBooksResponse{}, ErrInvalid("malformed csv: " + err.Error())
	}
	if len(records) < 2 {
		return ImportBooksResponse{}, ErrInvalid("csv must have a header row and at least one data row")
	}

	// 先頭行はヘッダとして読み飛ばす
	rows := records[1:]

	resp := ImportBooksResponse{Total: len(rows), Results: make([]ImportRowResult, 0, len(rows))}
	for i, rec := range rows {
		rowNo := i + 1
		result := ImportRowResult{Row: rowNo}

		req, err := parseImportRow(rec)
		if err == nil {
			var created BookResponse
			created, err = s.CreateBook(ctx, req)
			if err == nil {
				result.Ok = true
				result.BookID = &created.BookID
				result.Name = &created.Name
			}
		}
		if err != nil {
			msg := err.Error()
			result.Error = &msg
			resp.NgCount++
		} else {
			resp.OkCount++
		}
		resp.Results = append(resp.Results, result)
	}
	return resp, nil
}

func parseImportRow(rec []string) (CreateBookRequest, error) {
	if len(rec) < 3 {
		return CreateBookRequest{}, ErrInvalid("row must have name, category, rent_per_day")
	}
	rent, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return CreateBookRequest{}, ErrInvalid("rent_per_day must be a number")
	}
	return CreateBookRequest{
		Name:       strings.TrimSpace(rec[0]),
		Category:   strings.TrimSpace(rec[1]),
		RentPerDay: rent,
	}, nil
}

// decodeCSV: UTF-8(BOM剥がし込み)ならそのまま、不正なバイト列はCP932とみなして変換
func decodeCSV(raw []byte) io.Reader {
	trimmed := bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(trimmed) {
		return bytes.NewReader(trimmed)
	}
	return transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder())
}
