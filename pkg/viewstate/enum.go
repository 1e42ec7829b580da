package viewstate

import "fmt"

type textEnum interface {
	~uint8
	String() string
}

// parseEnum maps a name produced by String back onto the value in [first, last].
func parseEnum[T textEnum](text []byte, first, last T, kind string) (T, error) {
	for v := first; v <= last; v++ {
		if v.String() == string(text) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("viewstate: unknown %s %q", kind, text)
}

func (d *Direction) UnmarshalText(text []byte) (err error) {
	*d, err = parseEnum(text, Sent, Received, "direction")
	return err
}

func (b *BubbleBackground) UnmarshalText(text []byte) (err error) {
	*b, err = parseEnum(text, BackgroundFirst, BackgroundGone, "background")
	return err
}

func (m *MenuItem) UnmarshalText(text []byte) (err error) {
	*m, err = parseEnum(text, MenuBoost, MenuFlag, "menu item")
	return err
}

func (s *FileState) UnmarshalText(text []byte) (err error) {
	*s, err = parseEnum(text, FileAvailable, FileUnavailable, "file state")
	return err
}
