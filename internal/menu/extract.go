package menu

import (
	"strings"

	"firstscoop-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// FoodRecord is a single menu item as it will be rendered.
type FoodRecord struct {
	Name      string   `json:"name"`
	Calories  Value    `json:"calories"`
	Carbs     Value    `json:"carbs_g"`
	Protein   Value    `json:"protein_g"`
	Fat       Value    `json:"fat_g"`
	PhotoURL  string   `json:"photo_url"`
	Allergens []string `json:"allergens"`
}

// MealSections maps meal periods to their records in document order.
type MealSections map[MealPeriod][]FoodRecord

// Empty reports whether no period has any record.
func (m MealSections) Empty() bool {
	for _, records := range m {
		if len(records) > 0 {
			return false
		}
	}
	return true
}

// DefaultPhotoURLPrefix is where the dining hall's food photos are hosted.
const DefaultPhotoURLPrefix = "https://www.nutritics.com/images-user/food/168118/430x430x"

// DefaultExclude lists items that are always hidden from the digest.
var DefaultExclude = []string{"pizza", "scallions", "peppers"}

// Extractor turns tagged menu elements into FoodRecords.
type Extractor struct {
	// PhotoURLPrefix is prepended to the element's photo id to form its image url.
	PhotoURLPrefix string
	// Exclude drops every item whose name contains one of the tokens, case-insensitively.
	Exclude []string
}

// Extract maps each element to a FoodRecord, preserving order. Elements without a name
// and excluded items are dropped, missing nutrition attributes stay absent.
func (e Extractor) Extract(elements *goquery.Selection) []FoodRecord {
	records := []FoodRecord{}
	elements.Each(func(_ int, element *goquery.Selection) {
		name, ok := element.Attr("data-name")
		if !ok || strings.TrimSpace(name) == "" {
			return
		}
		if textutil.ContainsAny(name, e.Exclude) {
			return
		}

		record := FoodRecord{
			Name:      name,
			Calories:  attrValue(element, "data-cals"),
			Carbs:     attrValue(element, "data-carbs"),
			Protein:   attrValue(element, "data-protein"),
			Fat:       attrValue(element, "data-fat"),
			Allergens: allergens(element),
		}
		if photoId, ok := element.Attr("data-fid"); ok && photoId != "" {
			record.PhotoURL = e.PhotoURLPrefix + photoId + ".jpg"
		}
		records = append(records, record)
	})
	return records
}

func attrValue(element *goquery.Selection, name string) Value {
	text, ok := element.Attr(name)
	if !ok {
		return Value{}
	}
	return Present(text)
}

func allergens(element *goquery.Selection) []string {
	out := []string{}
	container := element.Find(".allergens").First()
	if container.Length() == 0 {
		return out
	}
	container.Find(".allergenicon").Each(func(_ int, icon *goquery.Selection) {
		label := strings.TrimSpace(icon.Text())
		if label != "" {
			out = append(out, label)
		}
	})
	return out
}
