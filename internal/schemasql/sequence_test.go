package schemasql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/schemair"
)

func TestCompileSequence(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*schemair.SequenceBlueprint)
		want []string
	}{
		{"create", func(s *schemair.SequenceBlueprint) { s.Create() },
			[]string{`CREATE SEQUENCE "order_no"`}},
		{"create with start and step", func(s *schemair.SequenceBlueprint) {
			s.Create()
			s.StartWith(100)
			s.IncrementBy(10)
		}, []string{`CREATE SEQUENCE "order_no" START WITH 100 INCREMENT BY 10`}},
		{"implied alter restart", func(s *schemair.SequenceBlueprint) { s.Restart() },
			[]string{`ALTER SEQUENCE "order_no" RESTART`}},
		{"implied alter restart with value", func(s *schemair.SequenceBlueprint) { s.RestartWith(5) },
			[]string{`ALTER SEQUENCE "order_no" RESTART WITH 5`}},
		{"implied alter increment", func(s *schemair.SequenceBlueprint) { s.IncrementBy(2) },
			[]string{`ALTER SEQUENCE "order_no" INCREMENT BY 2`}},
		{"drop", func(s *schemair.SequenceBlueprint) { s.Drop() },
			[]string{`DROP SEQUENCE "order_no"`}},
		{"drop if exists", func(s *schemair.SequenceBlueprint) { s.DropIfExists() },
			[]string{"EXECUTE BLOCK\n" +
				"AS\n" +
				"BEGIN\n" +
				"  IF (EXISTS(SELECT * FROM RDB$GENERATORS WHERE RDB$GENERATOR_NAME = 'order_no')) THEN\n" +
				"    EXECUTE STATEMENT 'DROP SEQUENCE \"order_no\"';\n" +
				"END"}},
	}
	g := grammarFor(t, dialect.ModernFetch)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.CompileSequence(schemair.NewSequence("order_no", tt.fn))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileSequence_DropIfExistsTwice(t *testing.T) {
	g := grammarFor(t, dialect.LegacyRows)
	s := schemair.NewSequence("never_created", func(s *schemair.SequenceBlueprint) {
		s.DropIfExists()
		s.DropIfExists()
	})

	got, err := g.CompileSequence(s)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, got[0], got[1])
	assert.Contains(t, got[0], "IF (EXISTS(")
}

func TestCompileSequence_Generators(t *testing.T) {
	g := grammarFor(t, dialect.LegacyFirstSkip)

	tests := []struct {
		name string
		fn   func(*schemair.SequenceBlueprint)
		want []string
	}{
		{"create", func(s *schemair.SequenceBlueprint) { s.Create() },
			[]string{`CREATE GENERATOR "g"`}},
		{"create with start", func(s *schemair.SequenceBlueprint) {
			s.Create()
			s.StartWith(7)
		}, []string{`CREATE GENERATOR "g"`, `SET GENERATOR "g" TO 7`}},
		{"restart", func(s *schemair.SequenceBlueprint) { s.RestartWith(3) },
			[]string{`SET GENERATOR "g" TO 3`}},
		{"restart without value", func(s *schemair.SequenceBlueprint) { s.Restart() },
			[]string{`SET GENERATOR "g" TO 0`}},
		{"drop", func(s *schemair.SequenceBlueprint) { s.Drop() },
			[]string{`DROP GENERATOR "g"`}},
		{"drop if exists is skipped", func(s *schemair.SequenceBlueprint) { s.DropIfExists() }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.CompileSequence(schemair.NewSequence("g", tt.fn))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.CompileSequence(schemair.NewSequence("g", func(s *schemair.SequenceBlueprint) { s.IncrementBy(2) }))
	assert.True(t, errors.Is(err, dialect.ErrUnsupported))
	assert.False(t, g.SupportsSequence(schemair.CmdDropSequenceIfExists))
}

func TestCompileSequence_Prefix(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch, WithTablePrefix("app_"))

	got, err := g.CompileSequence(schemair.NewSequence("order_no", func(s *schemair.SequenceBlueprint) { s.Create() }))
	require.NoError(t, err)
	assert.Equal(t, []string{`CREATE SEQUENCE "app_order_no"`}, got)
}

func TestCompileSequence_MissingName(t *testing.T) {
	_, err := grammarFor(t, dialect.ModernFetch).CompileSequence(schemair.NewSequence("", nil))
	var cfgErr *dialect.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, dialect.CodeMissingSequence, cfgErr.Code)
}
