package moving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moveline/leadgate/domains/session"
)

func TestExtractItemsBasicList(t *testing.T) {
	items := ExtractItems("диван, холодильник и 10 коробок")
	require.Len(t, items, 3)
	assert.Equal(t, session.ItemCount{Key: "sofa_3seat", Qty: 1}, items[0])
	assert.Equal(t, session.ItemCount{Key: "refrigerator", Qty: 1}, items[1])
	assert.Equal(t, session.ItemCount{Key: "box_standard", Qty: 10}, items[2])
}

func TestExtractItemsExplicitQty(t *testing.T) {
	items := ExtractItems("2 x диван")
	require.Len(t, items, 1)
	assert.Equal(t, session.ItemCount{Key: "sofa_3seat", Qty: 2}, items[0])

	items = ExtractItems("коробки 5 шт")
	require.Len(t, items, 1)
	assert.Equal(t, session.ItemCount{Key: "box_standard", Qty: 5}, items[0])
}

func TestExtractItemsAttributeNumbersAreNotQuantities(t *testing.T) {
	items := ExtractItems("шкаф 3-дверный")
	require.Len(t, items, 1)
	assert.Equal(t, session.ItemCount{Key: "wardrobe_large", Qty: 1}, items[0])

	// Dimensions are stripped before counting.
	items = ExtractItems("стол 120x60 см")
	require.Len(t, items, 1)
	assert.Equal(t, session.ItemCount{Key: "dining_table", Qty: 1}, items[0])
}

func TestExtractItemsBareQtyCap(t *testing.T) {
	items := ExtractItems("холодильник 250")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Qty)

	items = ExtractItems("коробки 200")
	require.Len(t, items, 1)
	assert.Equal(t, 200, items[0].Qty)
}

func TestExtractItemsLongestAliasWins(t *testing.T) {
	items := ExtractItems("письменный стол")
	require.Len(t, items, 1)
	assert.Equal(t, "desk", items[0].Key)
}

func TestExtractItemsDedupSums(t *testing.T) {
	items := ExtractItems("диван и диван")
	require.Len(t, items, 1)
	assert.Equal(t, session.ItemCount{Key: "sofa_3seat", Qty: 2}, items[0])
}

func TestExtractItemsEnglishAndHebrew(t *testing.T) {
	items := ExtractItems("sofa, fridge and 3 boxes")
	require.Len(t, items, 3)
	assert.Equal(t, "sofa_3seat", items[0].Key)
	assert.Equal(t, "refrigerator", items[1].Key)
	assert.Equal(t, session.ItemCount{Key: "box_standard", Qty: 3}, items[2])

	items = ExtractItems("ספה, מקרר")
	require.Len(t, items, 2)
	assert.Equal(t, "sofa_3seat", items[0].Key)
	assert.Equal(t, "refrigerator", items[1].Key)
}

func TestExtractItemsNoMatch(t *testing.T) {
	assert.Empty(t, ExtractItems("всякое разное без мебели"))
	assert.Empty(t, ExtractItems(""))
}

func TestVolumeFromRooms(t *testing.T) {
	vol, ok := VolumeFromRooms("студия в центре")
	require.True(t, ok)
	assert.Equal(t, "small", vol)

	vol, ok = VolumeFromRooms("3-комнатная квартира")
	require.True(t, ok)
	assert.Equal(t, "large", vol)

	vol, ok = VolumeFromRooms("2 bedroom apartment with living room")
	require.True(t, ok)
	assert.Equal(t, "large", vol)

	_, ok = VolumeFromRooms("перевезти квартиру")
	assert.False(t, ok)
}

func TestVolumeFromItems(t *testing.T) {
	vol, ok := VolumeFromItems([]session.ItemCount{{Key: "box_standard", Qty: 5}})
	require.True(t, ok)
	assert.Equal(t, "small", vol)

	vol, ok = VolumeFromItems([]session.ItemCount{
		{Key: "sofa_3seat", Qty: 1},
		{Key: "refrigerator", Qty: 1},
		{Key: "wardrobe_large", Qty: 1},
	})
	require.True(t, ok)
	assert.Equal(t, "large", vol)

	_, ok = VolumeFromItems(nil)
	assert.False(t, ok)
}
