package component

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComponent struct {
	name string
}

func (f *fakeComponent) Meta() Metadata            { return Metadata{Name: f.name, Type: "processor"} }
func (f *fakeComponent) InputPorts() []Port        { return nil }
func (f *fakeComponent) OutputPorts() []Port       { return nil }
func (f *fakeComponent) ConfigSchema() ConfigSchema {
	return ConfigSchema{Properties: map[string]PropertySchema{}}
}
func (f *fakeComponent) Health() HealthStatus   { return HealthStatus{Healthy: true} }
func (f *fakeComponent) DataFlow() FlowMetrics  { return FlowMetrics{} }

func fakeFactory(_ json.RawMessage, _ Dependencies) (Discoverable, error) {
	return &fakeComponent{name: "fake"}, nil
}

func TestRegisterFactory(t *testing.T) {
	registry := NewRegistry()

	err := registry.RegisterWithConfig(RegistrationConfig{
		Name:    "fake",
		Factory: fakeFactory,
		Type:    "processor",
	})
	require.NoError(t, err)

	// Duplicate registration fails
	err = registry.RegisterWithConfig(RegistrationConfig{
		Name:    "fake",
		Factory: fakeFactory,
		Type:    "processor",
	})
	assert.Error(t, err)

	assert.Equal(t, []string{"fake"}, registry.ListFactories())
}

func TestRegisterFactoryValidation(t *testing.T) {
	registry := NewRegistry()

	assert.Error(t, registry.RegisterFactory("", &Registration{Factory: fakeFactory, Type: "processor"}))
	assert.Error(t, registry.RegisterFactory("x", nil))
	assert.Error(t, registry.RegisterFactory("x", &Registration{Type: "processor"}))
	assert.Error(t, registry.RegisterFactory("x", &Registration{Factory: fakeFactory}))
}

func TestCreateComponent(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterWithConfig(RegistrationConfig{
		Name:    "fake",
		Factory: fakeFactory,
		Type:    "processor",
	}))

	instance, err := registry.CreateComponent("fake-main", "fake", nil, Dependencies{})
	require.NoError(t, err)
	require.NotNil(t, instance)

	got, exists := registry.GetInstance("fake-main")
	assert.True(t, exists)
	assert.Equal(t, instance, got)

	// Duplicate instance name fails
	_, err = registry.CreateComponent("fake-main", "fake", nil, Dependencies{})
	assert.Error(t, err)

	// Unknown factory fails
	_, err = registry.CreateComponent("other", "missing", nil, Dependencies{})
	assert.Error(t, err)

	assert.True(t, registry.RemoveInstance("fake-main"))
	assert.False(t, registry.RemoveInstance("fake-main"))
}

func TestValidateComponentName(t *testing.T) {
	assert.NoError(t, ValidateComponentName("tsv-repair-main"))
	assert.NoError(t, ValidateComponentName("a"))
	assert.Error(t, ValidateComponentName(""))
	assert.Error(t, ValidateComponentName("1starts-with-digit"))
	assert.Error(t, ValidateComponentName("has spaces"))
	assert.Error(t, ValidateComponentName("has/slash"))
}

func TestGenerateConfigSchema(t *testing.T) {
	type testConfig struct {
		Script     string `json:"script"      schema:"type:string,description:Inline script,required:true,category:basic"`
		Workers    int    `json:"workers"     schema:"description:Worker count,category:advanced"`
		Mode       string `json:"mode"        schema:"enum:strict|lenient"`
		Skipped    string `json:"-"`
		unexported string //nolint:unused
	}

	schema := GenerateConfigSchema(reflect.TypeOf(testConfig{}))

	require.Contains(t, schema.Properties, "script")
	assert.Equal(t, "string", schema.Properties["script"].Type)
	assert.Equal(t, "Inline script", schema.Properties["script"].Description)
	assert.Equal(t, "basic", schema.Properties["script"].Category)
	assert.Equal(t, []string{"script"}, schema.Required)

	require.Contains(t, schema.Properties, "workers")
	assert.Equal(t, "int", schema.Properties["workers"].Type, "type inferred from Go kind")

	require.Contains(t, schema.Properties, "mode")
	assert.Equal(t, "enum", schema.Properties["mode"].Type)
	assert.Equal(t, []string{"strict", "lenient"}, schema.Properties["mode"].Enum)

	assert.NotContains(t, schema.Properties, "Skipped")
	assert.NotContains(t, schema.Properties, "unexported")
}

func TestPayloadRegistry(t *testing.T) {
	registry := NewPayloadRegistry()

	reg := &PayloadRegistration{
		Domain:   "tsv",
		Category: "bad",
		Version:  "v1",
		Factory:  func() any { return map[string]any{} },
	}
	require.NoError(t, registry.RegisterPayload(reg))
	assert.Equal(t, "tsv.bad.v1", reg.MessageType())

	// Duplicate rejected
	assert.Error(t, registry.RegisterPayload(reg))

	// Validation
	assert.Error(t, registry.RegisterPayload(nil))
	assert.Error(t, registry.RegisterPayload(&PayloadRegistration{Domain: "tsv", Category: "bad", Version: "v1"}))

	created := registry.CreatePayload("tsv", "bad", "v1")
	assert.NotNil(t, created)
	assert.Nil(t, registry.CreatePayload("tsv", "unknown", "v1"))

	payloads := registry.ListPayloads()
	require.Contains(t, payloads, "tsv.bad.v1")
	assert.Nil(t, payloads["tsv.bad.v1"].Factory, "factory not copied out")
}
