package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockIndicator is a simple mock indicator for testing the registry and pipeline
type mockIndicator struct {
	name     types.IndicatorType
	columns  []string
	lookback int
	compute  func(input Input) ([][]float64, error)
}

func newMockIndicator(name types.IndicatorType) *mockIndicator {
	return &mockIndicator{name: name, columns: []string{string(name)}}
}

func (m *mockIndicator) Name() types.IndicatorType {
	return m.name
}

func (m *mockIndicator) Columns() []string {
	return m.columns
}

func (m *mockIndicator) Lookback() int {
	return m.lookback
}

func (m *mockIndicator) Compute(input Input) ([][]float64, error) {
	if m.compute != nil {
		return m.compute(input)
	}

	out := make([]float64, input.Len())
	for i := range out {
		out[i] = float64(i)
	}

	return [][]float64{out}, nil
}

func (m *mockIndicator) Config(params ...any) error {
	return nil
}

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestRegisterIndicator() {
	registry := NewIndicatorRegistry()

	indicator := newMockIndicator(types.IndicatorTypeRSI)
	suite.NoError(registry.RegisterIndicator(indicator))

	retrieved, err := registry.GetIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal(indicator, retrieved)
}

func (suite *RegistryTestSuite) TestRegisterDuplicateIndicator() {
	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(newMockIndicator(types.IndicatorTypeRSI)))

	err := registry.RegisterIndicator(newMockIndicator(types.IndicatorTypeRSI))
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorRegistered))
}

func (suite *RegistryTestSuite) TestGetNonExistentIndicator() {
	registry := NewIndicatorRegistry()

	indicator, err := registry.GetIndicator(types.IndicatorTypeMACD)
	suite.Nil(indicator)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestListAndRemove() {
	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(newMockIndicator(types.IndicatorTypeRSI)))
	suite.NoError(registry.RegisterIndicator(newMockIndicator(types.IndicatorTypeADX)))

	suite.Equal([]types.IndicatorType{types.IndicatorTypeADX, types.IndicatorTypeRSI}, registry.ListIndicators())

	suite.NoError(registry.RemoveIndicator(types.IndicatorTypeRSI))
	suite.Equal([]types.IndicatorType{types.IndicatorTypeADX}, registry.ListIndicators())

	err := registry.RemoveIndicator(types.IndicatorTypeRSI)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestDefaultRegistryHoldsEveryType() {
	registry := NewDefaultRegistry()
	suite.Len(registry.ListIndicators(), len(types.AllIndicatorTypes))

	for _, name := range types.AllIndicatorTypes {
		indicator, err := registry.GetIndicator(name)
		suite.NoError(err)
		suite.Equal(name, indicator.Name())
	}
}
