//go:build ((linux && !android) || freebsd || openbsd || netbsd || dragonfly) && cgo

package clip

// #cgo LDFLAGS: -lX11 -lpthread
//
// #include <X11/Xlib.h>
// #include <X11/Xatom.h>
// #include <limits.h>
// #include <pthread.h>
// #include <stdlib.h>
// #include <string.h>
// #include <time.h>
//
// typedef struct { Atom target; unsigned char* data; unsigned long len; } x11_entry;
//
// static Display* owner_dpy;
// static Window owner_win;
// static Atom a_clipboard, a_targets, a_atom;
// static Atom a_text[8];
// static int a_text_n;
// static pthread_mutex_t table_mu = PTHREAD_MUTEX_INITIALIZER;
// static x11_entry* table;
// static int table_n;
// static int owned;
//
// static void free_table(void) {
//     for (int i = 0; i < table_n; i++) free(table[i].data);
//     free(table);
//     table = NULL;
//     table_n = 0;
// }
//
// static int is_text(Atom a) {
//     for (int i = 0; i < a_text_n; i++) if (a_text[i] == a) return 1;
//     return 0;
// }
//
// static x11_entry* lookup(Atom target) {
//     for (int i = 0; i < table_n; i++) if (table[i].target == target) return &table[i];
//     if (!is_text(target)) return NULL;
//     for (int i = 0; i < table_n; i++) if (is_text(table[i].target)) return &table[i];
//     return NULL;
// }
//
// static int x11_init(void) {
//     XInitThreads();
//     owner_dpy = XOpenDisplay(NULL);
//     if (owner_dpy == NULL) return 0;
//     owner_win = XCreateSimpleWindow(owner_dpy, DefaultRootWindow(owner_dpy), 0, 0, 1, 1, 0, 0, 0);
//     a_clipboard = XInternAtom(owner_dpy, "CLIPBOARD", False);
//     a_targets = XInternAtom(owner_dpy, "TARGETS", False);
//     a_atom = XInternAtom(owner_dpy, "ATOM", False);
//     return 1;
// }
//
// // Registers a text alias target. Called before the serve thread starts.
// static void x11_add_text_target(const char* name) {
//     if (a_text_n < 8) a_text[a_text_n++] = XInternAtom(owner_dpy, name, False);
// }
//
// static void handle_request(XSelectionRequestEvent* req) {
//     XSelectionEvent ev;
//     memset(&ev, 0, sizeof(ev));
//     ev.type = SelectionNotify;
//     ev.display = req->display;
//     ev.requestor = req->requestor;
//     ev.selection = req->selection;
//     ev.target = req->target;
//     ev.time = req->time;
//     ev.property = None;
//     Atom prop = req->property != None ? req->property : req->target;
//
//     pthread_mutex_lock(&table_mu);
//     if (owned && req->selection == a_clipboard) {
//         if (req->target == a_targets) {
//             Atom* atoms = malloc(sizeof(Atom) * (table_n + a_text_n + 1));
//             int n = 0, text = 0;
//             atoms[n++] = a_targets;
//             for (int i = 0; i < table_n; i++) {
//                 if (is_text(table[i].target)) { text = 1; continue; }
//                 atoms[n++] = table[i].target;
//             }
//             if (text) for (int i = 0; i < a_text_n; i++) atoms[n++] = a_text[i];
//             XChangeProperty(owner_dpy, req->requestor, prop, a_atom, 32, PropModeReplace, (unsigned char*)atoms, n);
//             free(atoms);
//             ev.property = prop;
//         } else {
//             x11_entry* e = lookup(req->target);
//             if (e != NULL) {
//                 XChangeProperty(owner_dpy, req->requestor, prop, req->target, 8, PropModeReplace, e->data, (int)e->len);
//                 ev.property = prop;
//             }
//         }
//     }
//     pthread_mutex_unlock(&table_mu);
//     XSendEvent(owner_dpy, req->requestor, False, NoEventMask, (XEvent*)&ev);
//     XFlush(owner_dpy);
// }
//
// static void x11_serve(void) {
//     XEvent ev;
//     for (;;) {
//         XNextEvent(owner_dpy, &ev);
//         switch (ev.type) {
//         case SelectionClear:
//             pthread_mutex_lock(&table_mu);
//             if (ev.xselectionclear.selection == a_clipboard) {
//                 owned = 0;
//                 free_table();
//             }
//             pthread_mutex_unlock(&table_mu);
//             break;
//         case SelectionRequest:
//             handle_request(&ev.xselectionrequest);
//             break;
//         }
//     }
// }
//
// // Installs the new table and claims CLIPBOARD under one lock, so requests
// // are answered either entirely from the old table or entirely from the new.
// static int x11_write(char** names, unsigned char** data, unsigned long* lens, int n) {
//     x11_entry* next = calloc(n > 0 ? n : 1, sizeof(x11_entry));
//     for (int i = 0; i < n; i++) {
//         next[i].target = XInternAtom(owner_dpy, names[i], False);
//         next[i].data = malloc(lens[i] > 0 ? lens[i] : 1);
//         if (lens[i] > 0) memcpy(next[i].data, data[i], lens[i]);
//         next[i].len = lens[i];
//     }
//     pthread_mutex_lock(&table_mu);
//     free_table();
//     table = next;
//     table_n = n;
//     XSetSelectionOwner(owner_dpy, a_clipboard, owner_win, CurrentTime);
//     owned = XGetSelectionOwner(owner_dpy, a_clipboard) == owner_win;
//     int ok = owned;
//     if (!ok) free_table();
//     pthread_mutex_unlock(&table_mu);
//     XFlush(owner_dpy);
//     return ok;
// }
//
// static int x11_owned(void) {
//     pthread_mutex_lock(&table_mu);
//     int o = owned;
//     pthread_mutex_unlock(&table_mu);
//     return o;
// }
//
// static int wait_event(Display* d, Window w, int type, XEvent* ev, int ms) {
//     struct timespec tick = {0, 1000000};
//     for (int i = 0; i < ms; i++) {
//         if (XCheckTypedWindowEvent(d, w, type, ev)) return 1;
//         nanosleep(&tick, NULL);
//     }
//     return 0;
// }
//
// // Xlib returns 32-bit property items as longs.
// static unsigned long prop_bytes(int bits, unsigned long items) {
//     return bits == 32 ? items * sizeof(long) : items * (bits / 8);
// }
//
// static void append(unsigned char** buf, unsigned long* n, unsigned char* src, unsigned long len) {
//     *buf = realloc(*buf, *n + len + 1);
//     memcpy(*buf + *n, src, len);
//     *n += len;
// }
//
// // Reads target from the current foreign CLIPBOARD owner, following the
// // INCR protocol for large transfers. *status: 0 timeout/no display,
// // 1 ok (NULL result means absent).
// static unsigned char* x11_read(const char* name, unsigned long* n, int* status, int* items32) {
//     *n = 0;
//     *status = 0;
//     *items32 = 0;
//     Display* d = XOpenDisplay(NULL);
//     if (d == NULL) return NULL;
//     Window w = XCreateSimpleWindow(d, DefaultRootWindow(d), 0, 0, 1, 1, 0, 0, 0);
//     Atom sel = XInternAtom(d, "CLIPBOARD", False);
//     Atom target = XInternAtom(d, name, False);
//     Atom prop = XInternAtom(d, "PASTEBOARD_DATA", False);
//     Atom incr = XInternAtom(d, "INCR", False);
//     unsigned char* out = NULL;
//
//     if (XGetSelectionOwner(d, sel) == None) {
//         *status = 1;
//         goto done;
//     }
//     XSelectInput(d, w, PropertyChangeMask);
//     XConvertSelection(d, sel, target, prop, w, CurrentTime);
//     XFlush(d);
//
//     XEvent ev;
//     if (!wait_event(d, w, SelectionNotify, &ev, 2000)) goto done;
//     *status = 1;
//     if (ev.xselection.property == None) goto done;
//
//     Atom type;
//     int bits;
//     unsigned long items, after;
//     unsigned char* data = NULL;
//     XGetWindowProperty(d, w, prop, 0, LONG_MAX / 4, True, AnyPropertyType, &type, &bits, &items, &after, &data);
//     if (type == incr) {
//         if (data) XFree(data);
//         for (;;) {
//             if (!wait_event(d, w, PropertyNotify, &ev, 2000)) { *status = 0; break; }
//             if (ev.xproperty.atom != prop || ev.xproperty.state != PropertyNewValue) continue;
//             data = NULL;
//             XGetWindowProperty(d, w, prop, 0, LONG_MAX / 4, True, AnyPropertyType, &type, &bits, &items, &after, &data);
//             if (items == 0) { if (data) XFree(data); break; }
//             append(&out, n, data, prop_bytes(bits, items));
//             XFree(data);
//         }
//     } else if (data != NULL) {
//         if (bits == 32) *items32 = 1;
//         append(&out, n, data, prop_bytes(bits, items));
//         XFree(data);
//     }
//
// done:
//     XDestroyWindow(d, w);
//     XCloseDisplay(d);
//     return out;
// }
//
// static char* x11_atom_name(long atom) {
//     char* name = XGetAtomName(owner_dpy, (Atom)atom);
//     if (name == NULL) return NULL;
//     char* out = strdup(name);
//     XFree(name);
//     return out;
// }
import "C"

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"
)

var errSelectionTimeout = errors.New("x11: clipboard owner did not answer")

type x11Backend struct {
	// mirror of the entries we serve while we own CLIPBOARD
	own *Memory
	mu  sync.Mutex
}

// New returns the X11 clipboard backend, or a headless in-memory backend if
// no display is available (e.g. a headless server without X11 or XWayland).
// Contents written by this process are served for as long as it runs.
func New() Backend {
	if C.x11_init() == 0 {
		slog.Warn("clipboard unavailable, running headless", "err", "cannot open X display")
		return newMemory("headless (in-memory)")
	}
	for _, t := range textTargets {
		cs := C.CString(t)
		C.x11_add_text_target(cs)
		C.free(unsafe.Pointer(cs))
	}
	b := &x11Backend{own: newMemory("x11 owner")}
	go func() {
		runtime.LockOSThread()
		C.x11_serve()
	}()
	return b
}

// NewFind returns nil: X11 has no find pasteboard.
func NewFind() Backend { return nil }

func (b *x11Backend) Name() string { return "X11 CLIPBOARD selection" }

// Clear takes ownership with an empty target list; X11 has no way to empty
// a selection owned by another client.
func (b *x11Backend) Clear() error {
	return b.WriteEntries(nil)
}

func (b *x11Backend) WriteEntries(entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	n := len(entries)
	size := n
	if size == 0 {
		size = 1
	}

	ptrSize := C.size_t(unsafe.Sizeof(uintptr(0)))
	namesPtr := (**C.char)(C.malloc(C.size_t(size) * ptrSize))
	dataPtr := (**C.uchar)(C.malloc(C.size_t(size) * ptrSize))
	lensPtr := (*C.ulong)(C.malloc(C.size_t(size) * C.size_t(unsafe.Sizeof(C.ulong(0)))))
	names := unsafe.Slice(namesPtr, n)
	data := unsafe.Slice(dataPtr, n)
	lens := unsafe.Slice(lensPtr, n)
	defer func() {
		for i := range n {
			C.free(unsafe.Pointer(names[i]))
			C.free(unsafe.Pointer(data[i]))
		}
		C.free(unsafe.Pointer(namesPtr))
		C.free(unsafe.Pointer(dataPtr))
		C.free(unsafe.Pointer(lensPtr))
	}()
	for i, e := range entries {
		names[i] = C.CString(e.Format)
		data[i] = (*C.uchar)(C.CBytes(e.Data))
		lens[i] = C.ulong(len(e.Data))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if C.x11_write(namesPtr, dataPtr, lensPtr, C.int(n)) == 0 {
		return fmt.Errorf("x11: could not acquire CLIPBOARD ownership for %v", Formats(entries))
	}
	return b.own.WriteEntries(entries)
}

func (b *x11Backend) ReadEntry(format string) ([]byte, error) {
	if C.x11_owned() == 1 {
		return b.own.ReadEntry(format)
	}
	// Foreign owners rarely offer every text alias, so try them in turn.
	for _, target := range foreignTargets(format) {
		data, _, err := b.readForeign(target)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			return decodeTextTarget(target, data)
		}
	}
	return empty(), nil
}

func (b *x11Backend) readForeign(target string) ([]byte, bool, error) {
	cs := C.CString(target)
	defer C.free(unsafe.Pointer(cs))

	var (
		n       C.ulong
		status  C.int
		items32 C.int
	)
	p := C.x11_read(cs, &n, &status, &items32)
	if status == 0 {
		if p != nil {
			C.free(unsafe.Pointer(p))
		}
		return nil, false, errSelectionTimeout
	}
	if p == nil {
		return empty(), false, nil
	}
	defer C.free(unsafe.Pointer(p))
	return C.GoBytes(unsafe.Pointer(p), C.int(n)), items32 == 1, nil
}

func (b *x11Backend) HasFormat(format string) (bool, error) {
	if C.x11_owned() == 1 {
		return b.own.HasFormat(format)
	}
	formats, err := b.Formats()
	if err != nil {
		return false, err
	}
	for _, f := range formats {
		if f == format {
			return true, nil
		}
	}
	return false, nil
}

func (b *x11Backend) Formats() ([]string, error) {
	if C.x11_owned() == 1 {
		return b.own.Formats()
	}
	raw, items32, err := b.readForeign("TARGETS")
	if err != nil || !items32 {
		return nil, err
	}
	longSize := int(unsafe.Sizeof(C.long(0)))
	var out []string
	for off := 0; off+longSize <= len(raw); off += longSize {
		atom := *(*C.long)(unsafe.Pointer(&raw[off]))
		cs := C.x11_atom_name(atom)
		if cs == nil {
			continue
		}
		name := C.GoString(cs)
		C.free(unsafe.Pointer(cs))
		if name != "TARGETS" {
			out = append(out, name)
		}
	}
	return out, nil
}

// Owned reports whether this process still owns CLIPBOARD.
func (b *x11Backend) Owned() bool { return C.x11_owned() == 1 }

func (b *x11Backend) Close() {}
