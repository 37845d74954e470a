package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"agriportal-go/models"
)

const applicationsSheet = "Applications"

var applicationColumns = []string{
	"Application ID", "Farmer", "Phone", "Village", "District", "State",
	"Scheme", "Status", "Remarks", "Documents", "Submitted At", "Updated At",
}

// ApplicationsWorkbook lays out enriched applications one per row for
// offline review by administrators.
func ApplicationsWorkbook(views []models.ApplicationView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", applicationsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, title := range applicationColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(applicationsSheet, cell, title); err != nil {
			return nil, err
		}
	}

	for r, v := range views {
		snap := v.Snapshot()
		row := []interface{}{
			v.ID,
			v.FarmerName,
			snap.Phone,
			snap.Village,
			snap.District,
			snap.State,
			v.SchemeTitle,
			string(v.Status),
			v.Remarks,
			strings.Join(v.Documents, ", "),
			v.SubmittedAt.Format("2006-01-02 15:04"),
			v.UpdatedAt.Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(applicationsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := f.SetPanes(applicationsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	return f, nil
}
