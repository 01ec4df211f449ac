package sheets

import (
	"context"

	sheetsapi "google.golang.org/api/sheets/v4"
)

// valuesAPI is the slice of spreadsheets.values the store needs.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, data []*sheetsapi.ValueRange) error
}

type serviceValues struct {
	svc *sheetsapi.Service
}

func (v serviceValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v serviceValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := v.svc.Spreadsheets.Values.
		Update(spreadsheetID, rng, &sheetsapi.ValueRange{Range: rng, Values: values}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	return err
}

func (v serviceValues) BatchUpdate(ctx context.Context, spreadsheetID string, data []*sheetsapi.ValueRange) error {
	_, err := v.svc.Spreadsheets.Values.
		BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateValuesRequest{
			ValueInputOption: valueInputOption,
			Data:             data,
		}).
		Context(ctx).
		Do()
	return err
}
