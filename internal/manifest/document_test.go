package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerNames(t *testing.T) {
	names, err := ContainerNames([]byte(twoContainers))
	require.NoError(t, err)
	assert.Equal(t, []string{"container1", "container2"}, names)

	_, err = ContainerNames([]byte("kind: Service\n"))
	assert.ErrorIs(t, err, ErrNotDeployment)
}

func TestContainerEnv(t *testing.T) {
	doc, err := Parse([]byte(twoContainers))
	require.NoError(t, err)

	c, err := doc.SelectContainer("container1")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Index)

	env, err := c.Env()
	require.NoError(t, err)
	assert.Equal(t, []EnvVar{
		{Name: "c1e1", Value: "value1"},
		{Name: "c1e2", Value: "value2"},
	}, env)

	single, err := Parse([]byte(singleContainer))
	require.NoError(t, err)
	c, err = single.SelectContainer("")
	require.NoError(t, err)
	env, err = c.Env()
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestParseAnchors(t *testing.T) {
	input := `kind: Deployment
spec:
  template:
    spec:
      containers:
        - &app
          name: app
          image: x
`
	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	containers, err := doc.Containers()
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "app", containers[0].Name)
}

func TestDetectIndent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "two spaces", input: "spec:\n  a: 1\n", want: 2},
		{name: "four spaces", input: "kind: x\nspec:\n    a: 1\n", want: 4},
		{name: "flat", input: "a: 1\n", want: 2},
		{name: "flow", input: "spec: {a: 1}\n", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, detectIndent(doc.Root()))
		})
	}
}
