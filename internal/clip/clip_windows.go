//go:build windows && cgo

package clip

// #cgo LDFLAGS: -luser32 -lkernel32
//
// #include <windows.h>
// #include <stdlib.h>
// #include <string.h>
//
// static int cb_clear() {
//     if (!OpenClipboard(NULL)) return 0;
//     int ok = EmptyClipboard() ? 1 : 0;
//     CloseClipboard();
//     return ok;
// }
//
// // The clipboard stays open from EmptyClipboard until every format is set,
// // so other processes cannot observe a partially written state.
// static int cb_write(UINT* fmts, void** data, size_t* lens, int n) {
//     if (!OpenClipboard(NULL)) return 0;
//     if (!EmptyClipboard()) { CloseClipboard(); return 0; }
//     for (int i = 0; i < n; i++) {
//         HGLOBAL h = GlobalAlloc(GMEM_MOVEABLE, lens[i] ? lens[i] : 1);
//         if (h == NULL) { CloseClipboard(); return 0; }
//         void* p = GlobalLock(h);
//         if (lens[i]) memcpy(p, data[i], lens[i]);
//         GlobalUnlock(h);
//         if (SetClipboardData(fmts[i], h) == NULL) {
//             GlobalFree(h);
//             CloseClipboard();
//             return 0;
//         }
//     }
//     CloseClipboard();
//     return 1;
// }
//
// static void* cb_read(UINT fmt, size_t* n, int* ok) {
//     *n = 0;
//     *ok = 0;
//     if (!OpenClipboard(NULL)) return NULL;
//     *ok = 1;
//     HANDLE h = GetClipboardData(fmt);
//     if (h == NULL) { CloseClipboard(); return NULL; }
//     size_t sz = GlobalSize(h);
//     void* src = GlobalLock(h);
//     if (src == NULL || sz == 0) { CloseClipboard(); return NULL; }
//     void* buf = malloc(sz);
//     memcpy(buf, src, sz);
//     GlobalUnlock(h);
//     CloseClipboard();
//     *n = sz;
//     return buf;
// }
//
// static int cb_has(UINT fmt) {
//     return IsClipboardFormatAvailable(fmt) ? 1 : 0;
// }
//
// static int cb_enum(UINT* out, int max) {
//     if (!OpenClipboard(NULL)) return -1;
//     int n = 0;
//     UINT f = 0;
//     while (n < max && (f = EnumClipboardFormats(f)) != 0) out[n++] = f;
//     CloseClipboard();
//     return n;
// }
//
// static UINT cb_register(const wchar_t* name) {
//     return RegisterClipboardFormatW(name);
// }
//
// static int cb_name(UINT fmt, wchar_t* buf, int max) {
//     return GetClipboardFormatNameW(fmt, buf, max);
// }
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// Predefined clipboard formats, addressed by their winuser.h names.
var standardFormats = map[string]C.UINT{
	"CF_TEXT":        1,
	"CF_BITMAP":      2,
	"CF_OEMTEXT":     7,
	"CF_DIB":         8,
	"CF_UNICODETEXT": 13,
	"CF_HDROP":       15,
	"CF_LOCALE":      16,
	"CF_DIBV5":       17,
}

// Formats stored as wide strings on the OS side and UTF-8 in entries.
var wideFormats = map[string]bool{
	"CF_UNICODETEXT":          true,
	"UniformResourceLocatorW": true,
}

const maxEnumFormats = 256

var errClipboardBusy = errors.New("clipboard is open in another process")

type windowsBackend struct {
	mu  sync.Mutex
	ids map[string]C.UINT
}

// New returns the Windows clipboard backend.
func New() Backend {
	return &windowsBackend{ids: make(map[string]C.UINT)}
}

// NewFind returns nil: Windows has no find pasteboard.
func NewFind() Backend { return nil }

func (b *windowsBackend) Name() string { return "Windows Clipboard" }

// formatID resolves a format name to its clipboard format id, registering
// custom names on first use.
func (b *windowsBackend) formatID(name string) (C.UINT, error) {
	if id, ok := standardFormats[name]; ok {
		return id, nil
	}
	if id, ok := b.ids[name]; ok {
		return id, nil
	}
	wide, err := encodeUTF16([]byte(name))
	if err != nil {
		return 0, fmt.Errorf("format name %q: %w", name, err)
	}
	cs := C.CBytes(wide)
	defer C.free(cs)
	id := C.cb_register((*C.wchar_t)(cs))
	if id == 0 {
		return 0, fmt.Errorf("register clipboard format %q failed", name)
	}
	b.ids[name] = id
	return id, nil
}

func (b *windowsBackend) formatName(id C.UINT) string {
	for name, std := range standardFormats {
		if std == id {
			return name
		}
	}
	buf := make([]byte, 512)
	cbuf := C.malloc(C.size_t(len(buf)))
	defer C.free(cbuf)
	n := int(C.cb_name(id, (*C.wchar_t)(cbuf), C.int(len(buf)/2)))
	if n == 0 {
		return fmt.Sprintf("CF_%d", int(id))
	}
	name, err := decodeUTF16(C.GoBytes(cbuf, C.int(n*2)))
	if err != nil {
		return fmt.Sprintf("CF_%d", int(id))
	}
	return string(name)
}

func (b *windowsBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if C.cb_clear() == 0 {
		return errClipboardBusy
	}
	return nil
}

func (b *windowsBackend) WriteEntries(entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	n := len(entries)
	if n == 0 {
		return b.Clear()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fmts := make([]C.UINT, n)
	payloads := make([][]byte, n)
	for i, e := range entries {
		id, err := b.formatID(e.Format)
		if err != nil {
			return err
		}
		fmts[i] = id
		payloads[i] = e.Data
		if wideFormats[e.Format] {
			w, err := encodeUTF16(e.Data)
			if err != nil {
				return fmt.Errorf("%w: %q is not valid UTF-8: %v", ErrInvalidArgument, e.Format, err)
			}
			payloads[i] = w
		}
	}

	ptrSize := C.size_t(unsafe.Sizeof(uintptr(0)))
	cfmts := unsafe.Slice((*C.UINT)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.UINT(0))))), n)
	cdata := unsafe.Slice((*unsafe.Pointer)(C.malloc(C.size_t(n) * ptrSize)), n)
	clens := unsafe.Slice((*C.size_t)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.size_t(0))))), n)
	defer func() {
		for i := range n {
			C.free(cdata[i])
		}
		C.free(unsafe.Pointer(&cfmts[0]))
		C.free(unsafe.Pointer(&cdata[0]))
		C.free(unsafe.Pointer(&clens[0]))
	}()
	for i := range n {
		cfmts[i] = fmts[i]
		cdata[i] = C.CBytes(payloads[i])
		clens[i] = C.size_t(len(payloads[i]))
	}

	if C.cb_write(&cfmts[0], &cdata[0], &clens[0], C.int(n)) == 0 {
		return fmt.Errorf("clipboard write %v failed", Formats(entries))
	}
	return nil
}

func (b *windowsBackend) ReadEntry(format string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := b.formatID(format)
	if err != nil {
		return nil, err
	}
	var (
		n  C.size_t
		ok C.int
	)
	p := C.cb_read(id, &n, &ok)
	if ok == 0 {
		return nil, errClipboardBusy
	}
	if p == nil {
		return empty(), nil
	}
	defer C.free(p)
	data := C.GoBytes(p, C.int(n))
	if wideFormats[format] {
		return decodeUTF16(data)
	}
	return data, nil
}

func (b *windowsBackend) HasFormat(format string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := b.formatID(format)
	if err != nil {
		return false, err
	}
	return C.cb_has(id) == 1, nil
}

func (b *windowsBackend) Formats() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids [maxEnumFormats]C.UINT
	n := int(C.cb_enum(&ids[0], maxEnumFormats))
	if n < 0 {
		return nil, errClipboardBusy
	}
	out := make([]string, 0, n)
	for _, id := range ids[:n] {
		out = append(out, b.formatName(id))
	}
	return out, nil
}

func (b *windowsBackend) Close() {}
