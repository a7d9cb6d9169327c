package interop

import (
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/managed"
)

// category installs the handlers of one dispatch id under a parent id
type category struct {
	id      managed.DispatchID
	parent  managed.DispatchID
	install func(*dispatch.Table)
}

// categories lists parents before children
var categories = []category{
	{IDNull, 0, installNull},
	{IDObject, 0, installObject},
	{IDBoxed, IDObject, installPrimitive},
	{IDBoolean, IDBoxed, nil},
	{IDByte, IDBoxed, nil},
	{IDShort, IDBoxed, nil},
	{IDInteger, IDBoxed, nil},
	{IDLong, IDBoxed, nil},
	{IDFloat, IDBoxed, nil},
	{IDDouble, IDBoxed, nil},
	{IDCharacter, IDBoxed, nil},
	{IDString, IDBoxed, nil},
	{IDBigInteger, IDBoxed, nil},
	{IDArray, IDObject, installArray},
	{IDIterable, IDObject, installIterable},
	{IDList, IDIterable, installList},
	{IDMap, IDObject, installMap},
	{IDMapEntry, IDObject, installMapEntry},
	{IDIterator, IDObject, installIterator},
	{IDByteBuffer, IDObject, installBuffer},
	{IDThrowable, IDObject, installThrowable},
	{IDClass, IDObject, installClass},
	{IDLocalDate, IDObject, installLocalDate},
	{IDLocalTime, IDObject, installLocalTime},
	{IDZoneID, IDObject, installZoneID},
	{IDInstant, IDObject, installInstant},
	{IDZonedDateTime, IDObject, installZonedDateTime},
	{IDDate, IDObject, installDate},
	{IDDuration, IDObject, installDuration},
}

// Define adds the built-in categories to c without sealing it, so an
// embedder can add tables of its own before calling Seal.
func Define(c *dispatch.Catalog) error {
	for _, cat := range categories {
		var parent *dispatch.Table
		if cat.parent != 0 {
			parent, _ = c.Table(cat.parent)
		}
		t, err := c.Define(cat.id, CategoryName(cat.id), parent)
		if err != nil {
			return err
		}
		if cat.install != nil {
			cat.install(t)
		}
	}
	return nil
}

// NewCatalog returns the sealed catalog of the built-in categories
func NewCatalog() (*dispatch.Catalog, error) {
	c := dispatch.NewCatalog()
	if err := Define(c); err != nil {
		return nil, err
	}
	c.Seal()
	return c, nil
}
