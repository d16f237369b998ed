package roster

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/mcoot/tourneybot/internal/model"
)

const defaultSheet = "Sheet1"

func newSpreadsheet() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(model.RegistrationColumns))
	for i, col := range model.RegistrationColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendSpreadsheetRow adds rec after the last non-empty row of the active
// sheet. Values are written as strings so UIDs keep their digits verbatim.
func appendSpreadsheetRow(data []byte, rec model.Registration) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return nil, err
	}

	fields := rec.Fields()
	row := make([]any, len(fields))
	for i, v := range fields {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
