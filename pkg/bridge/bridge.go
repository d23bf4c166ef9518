package bridge

// Kind is the visual kind of a primitive.
type Kind uint8

const (
	KindBox    Kind = 0x01 // Container with ordered children
	KindText   Kind = 0x02 // Text leaf
	KindImage  Kind = 0x03 // Image leaf referencing a host asset
	KindButton Kind = 0x04 // Pressable container
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindBox:
		return "Box"
	case KindText:
		return "Text"
	case KindImage:
		return "Image"
	case KindButton:
		return "Button"
	default:
		return "Unknown"
	}
}

// Desc describes one primitive to the bridge. Payload fields are valid per
// kind: Text for KindText, Image (a host asset reference) for KindImage.
type Desc struct {
	Kind  Kind
	Text  string
	Image string
}

// Equal reports whether two descriptions would render identically. The
// engine skips Update calls for equal descriptions.
func (d Desc) Equal(other Desc) bool {
	return d == other
}

// Handle names a native visual object owned by the bridge. Zero means
// "no handle": mounting with parent zero creates a top-level object.
type Handle uint64

// Bridge turns primitive descriptions into native visual objects. The
// engine is the only caller and invokes it single-threaded, during mount,
// pump, and unmount.
//
// Cursor is the insertion index among the parent's children at the moment
// of the call. The bridge owns child ordering: inserting at a cursor must
// shift later siblings, and Remove must close the gap.
type Bridge interface {
	// Mount creates a native object for desc under parent at cursor and
	// returns its handle.
	Mount(desc Desc, parent Handle, cursor int) Handle

	// Update re-describes an existing object in place. The new desc may
	// carry a different kind; the object keeps its handle and position.
	Update(h Handle, desc Desc)

	// Remove detaches an object from its parent and destroys it. Children
	// of the removed object have already been removed by the engine.
	Remove(h Handle)
}
