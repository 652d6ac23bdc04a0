//go:build darwin && !ios && cgo

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
// #include <string.h>
//
// static NSPasteboard* pasteboard_get(int find) {
//     if (find) {
//         return [NSPasteboard pasteboardWithName:NSPasteboardNameFind];
//     }
//     return [NSPasteboard generalPasteboard];
// }
//
// static void pasteboard_clear(int find) {
//     @autoreleasepool {
//         [pasteboard_get(find) clearContents];
//     }
// }
//
// // declareTypes:owner: clears the pasteboard and announces every type in
// // one step, so readers never observe a mix of old and new entries.
// static int pasteboard_write(int find, char** types, void** data, long* lens, int n) {
//     @autoreleasepool {
//         NSPasteboard* pb = pasteboard_get(find);
//         NSMutableArray* names = [NSMutableArray arrayWithCapacity:n];
//         for (int i = 0; i < n; i++) {
//             [names addObject:[NSString stringWithUTF8String:types[i]]];
//         }
//         [pb declareTypes:names owner:nil];
//         for (int i = 0; i < n; i++) {
//             NSData* d = [NSData dataWithBytes:data[i] length:lens[i]];
//             if (![pb setData:d forType:names[i]]) {
//                 return 0;
//             }
//         }
//         return 1;
//     }
// }
//
// static void* pasteboard_read(int find, const char* type, long* n) {
//     @autoreleasepool {
//         NSData* d = [pasteboard_get(find) dataForType:[NSString stringWithUTF8String:type]];
//         if (d == nil || [d length] == 0) {
//             *n = 0;
//             return NULL;
//         }
//         *n = (long)[d length];
//         void* buf = malloc(*n);
//         memcpy(buf, [d bytes], *n);
//         return buf;
//     }
// }
//
// static int pasteboard_has(int find, const char* type) {
//     @autoreleasepool {
//         NSArray* types = [pasteboard_get(find) types];
//         return [types containsObject:[NSString stringWithUTF8String:type]] ? 1 : 0;
//     }
// }
//
// static char* pasteboard_types(int find) {
//     @autoreleasepool {
//         NSArray* types = [pasteboard_get(find) types];
//         NSString* joined = [types componentsJoinedByString:@"\n"];
//         return strdup([joined UTF8String]);
//     }
// }
import "C"

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

type darwinBackend struct {
	find C.int
	name string
	mu   sync.Mutex
}

// New returns the macOS general pasteboard backend.
func New() Backend {
	return &darwinBackend{name: "macOS NSPasteboard"}
}

// NewFind returns the macOS find pasteboard backend.
func NewFind() Backend {
	return &darwinBackend{find: 1, name: "macOS NSPasteboard (find)"}
}

func (b *darwinBackend) Name() string { return b.name }

func (b *darwinBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	C.pasteboard_clear(b.find)
	return nil
}

func (b *darwinBackend) WriteEntries(entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	n := len(entries)
	if n == 0 {
		return b.Clear()
	}

	ptrSize := C.size_t(unsafe.Sizeof(uintptr(0)))
	types := unsafe.Slice((**C.char)(C.malloc(C.size_t(n) * ptrSize)), n)
	data := unsafe.Slice((*unsafe.Pointer)(C.malloc(C.size_t(n) * ptrSize)), n)
	lens := unsafe.Slice((*C.long)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.long(0))))), n)
	defer func() {
		for i := range n {
			C.free(unsafe.Pointer(types[i]))
			C.free(data[i])
		}
		C.free(unsafe.Pointer(&types[0]))
		C.free(unsafe.Pointer(&data[0]))
		C.free(unsafe.Pointer(&lens[0]))
	}()
	for i, e := range entries {
		types[i] = C.CString(e.Format)
		data[i] = C.CBytes(e.Data)
		lens[i] = C.long(len(e.Data))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if C.pasteboard_write(b.find, &types[0], &data[0], &lens[0], C.int(n)) == 0 {
		return fmt.Errorf("pasteboard: write %v failed", Formats(entries))
	}
	return nil
}

func (b *darwinBackend) ReadEntry(format string) ([]byte, error) {
	cs := C.CString(format)
	defer C.free(unsafe.Pointer(cs))

	b.mu.Lock()
	defer b.mu.Unlock()
	var n C.long
	p := C.pasteboard_read(b.find, cs, &n)
	if p == nil {
		return empty(), nil
	}
	defer C.free(p)
	return C.GoBytes(p, C.int(n)), nil
}

func (b *darwinBackend) HasFormat(format string) (bool, error) {
	cs := C.CString(format)
	defer C.free(unsafe.Pointer(cs))

	b.mu.Lock()
	defer b.mu.Unlock()
	return C.pasteboard_has(b.find, cs) == 1, nil
}

func (b *darwinBackend) Formats() ([]string, error) {
	b.mu.Lock()
	cs := C.pasteboard_types(b.find)
	b.mu.Unlock()
	defer C.free(unsafe.Pointer(cs))

	joined := C.GoString(cs)
	if joined == "" {
		return nil, nil
	}
	return strings.Split(joined, "\n"), nil
}

func (b *darwinBackend) Close() {}
