package business

import (
	"bytes"
	"encoding/csv"

	log "github.com/sirupsen/logrus"
)

// CsvEmployeeRenderer renders a company's employee list as CSV, using the
// same column names the importer recognizes so a round trip is possible.
type CsvEmployeeRenderer struct {
}

func NewCsvEmployeeRenderer() *CsvEmployeeRenderer {
	return &CsvEmployeeRenderer{}
}

func (t *CsvEmployeeRenderer) RenderEmployees(company Company) (string, error) {
	data := make([][]string, 0, len(company.Employees)+1)
	data = append(data, []string{"fullName", "phone", "email", "position"})
	for _, e := range company.Employees {
		data = append(data, []string{e.FullName, e.Phone, e.Email, e.Position})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
