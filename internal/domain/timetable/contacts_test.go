package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContacts(t *testing.T) {
	t.Run("phone and joined emails", func(t *testing.T) {
		c := ParseContacts(`<contacts><phone>123</phone><email>a@x.com</email><email>b@x.com</email></contacts>`)

		require.NotNil(t, c.Phone)
		assert.Equal(t, "123", *c.Phone)
		require.NotNil(t, c.Email)
		assert.Equal(t, "a@x.com, b@x.com", *c.Email)
		assert.Nil(t, c.Telegram)
		assert.Nil(t, c.Viber)
	})

	t.Run("all fields", func(t *testing.T) {
		c := ParseContacts(`<?xml version="1.0"?>
<contacts>
  <phone>+380 50 000 0000</phone>
  <email>teacher@uni.edu</email>
  <telegram>@teacher</telegram>
  <viber>+380500000000</viber>
</contacts>`)

		require.NotNil(t, c.Phone)
		assert.Equal(t, "+380 50 000 0000", *c.Phone)
		assert.Equal(t, "teacher@uni.edu", *c.Email)
		assert.Equal(t, "@teacher", *c.Telegram)
		assert.Equal(t, "+380500000000", *c.Viber)
		assert.False(t, c.IsEmpty())
	})

	t.Run("first occurrence wins", func(t *testing.T) {
		c := ParseContacts(`<c><phone>1</phone><phone>2</phone></c>`)
		require.NotNil(t, c.Phone)
		assert.Equal(t, "1", *c.Phone)
	})

	t.Run("empty element is present", func(t *testing.T) {
		c := ParseContacts(`<c><telegram/></c>`)
		require.NotNil(t, c.Telegram)
		assert.Equal(t, "", *c.Telegram)
	})

	t.Run("empty emails are skipped", func(t *testing.T) {
		c := ParseContacts(`<c><email></email><email>x@y.z</email></c>`)
		require.NotNil(t, c.Email)
		assert.Equal(t, "x@y.z", *c.Email)

		c = ParseContacts(`<c><email></email></c>`)
		assert.Nil(t, c.Email)
	})

	t.Run("nested elements are ignored", func(t *testing.T) {
		c := ParseContacts(`<c><extra><phone>9</phone></extra></c>`)
		assert.True(t, c.IsEmpty())
	})

	t.Run("entities are decoded", func(t *testing.T) {
		c := ParseContacts(`<c><viber>a &amp; b</viber></c>`)
		require.NotNil(t, c.Viber)
		assert.Equal(t, "a & b", *c.Viber)
	})
}

func TestParseContacts_AbsentOnBadInput(t *testing.T) {
	inputs := map[string]string{
		"empty":           "",
		"blank":           "   \n\t",
		"unclosed":        "<unclosed",
		"unclosed root":   "<c><phone>1</phone>",
		"mismatched tags": "<c><phone>1</email></c>",
		"two roots":       "<a><phone>1</phone></a><b></b>",
		"trailing text":   "<c><phone>1</phone></c>junk",
		"plain text":      "just a phone 123",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				c := ParseContacts(input)
				assert.Equal(t, Contacts{}, c)
			})
		})
	}
}

func TestTeacher_ParsedContacts(t *testing.T) {
	teacher := Teacher{ID: 1, Name: "Іваненко І.І."}
	assert.True(t, teacher.ParsedContacts().IsEmpty())

	raw := "<c><phone>5</phone></c>"
	teacher.Contacts = &raw
	assert.Equal(t, "5", *teacher.ParsedContacts().Phone)
}
