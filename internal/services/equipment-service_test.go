package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEquipmentRow(t *testing.T) {
	item, err := parseEquipmentRow([]string{"Микроскоп", "lab", "Кабинет 12", "3"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Микроскоп", item.Name)
	assert.Equal(t, "lab", item.Category)
	assert.Equal(t, "Кабинет 12", item.Location)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, uint64(1), item.InstituteID)

	// Количество по умолчанию — 1, короткая строка допустима.
	item, err = parseEquipmentRow([]string{"Стол", "furniture"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Empty(t, item.Location)

	_, err = parseEquipmentRow([]string{"", "furniture", "", "1"}, 1)
	assert.Error(t, err, "пустое название отбраковывается")

	_, err = parseEquipmentRow([]string{"Стул", "", "", "1"}, 1)
	assert.Error(t, err, "пустая категория отбраковывается")

	_, err = parseEquipmentRow([]string{"Стул", "furniture", "", "ноль"}, 1)
	assert.Error(t, err, "нечисловое количество отбраковывается")

	_, err = parseEquipmentRow([]string{"Стул", "furniture", "", "-2"}, 1)
	assert.Error(t, err, "отрицательное количество отбраковывается")
}
