package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/juniorISO69960/schema.autobot.tf/internal/query"
	"github.com/juniorISO69960/schema.autobot.tf/internal/sku"
)

// nameFlags reads the proper and usePipeForSkin query flags.
func nameFlags(r *http.Request) (proper, pipe bool, err error) {
	if proper, err = boolFlag(r, "proper"); err != nil {
		return false, false, err
	}
	if pipe, err = boolFlag(r, "usePipeForSkin"); err != nil {
		return false, false, err
	}
	return proper, pipe, nil
}

func (h *handlers) readItem(r *http.Request) (sku.Item, error) {
	data, err := readBody(r, "item object")
	if err != nil {
		return sku.Item{}, err
	}
	return h.items.decode(data)
}

func (h *handlers) nameFromItem(w http.ResponseWriter, r *http.Request) {
	proper, pipe, err := nameFlags(r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	item, err := h.readItem(r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	name, err := h.facade.NameFromItem(item, proper, pipe)
	if err != nil {
		writeError(w, h.logger, err, "Item name returned null")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": name})
}

func (h *handlers) nameFromSKU(w http.ResponseWriter, r *http.Request) {
	proper, pipe, err := nameFlags(r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	s, err := readStringBody(r, "item sku")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	name, err := h.facade.NameFromSKU(s, proper, pipe)
	if err != nil {
		writeError(w, h.logger, err, "Item name returned null")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": name})
}

func generatedSKUMessage(item sku.Item) string {
	return fmt.Sprintf("Generated sku: %s - Please check the item name you've sent", item.String())
}

func (h *handlers) skuFromItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.readItem(r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	s, err := h.facade.SKUFromItem(item)
	if err != nil {
		writeError(w, h.logger, err, generatedSKUMessage(item))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sku": s})
}

func (h *handlers) skuFromName(w http.ResponseWriter, r *http.Request) {
	name, err := readStringBody(r, "item name")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	item, err := h.facade.ItemFromName(name)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	s, err := h.facade.SKUFromItem(item)
	if err != nil {
		writeError(w, h.logger, err, generatedSKUMessage(item))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sku": s})
}

func (h *handlers) itemFromName(w http.ResponseWriter, r *http.Request) {
	name, err := readStringBody(r, "item name")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	item, err := h.facade.ItemFromName(name)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

func (h *handlers) itemFromSKU(w http.ResponseWriter, r *http.Request) {
	s, err := readStringBody(r, "item sku")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	item, err := h.facade.ItemFromSKU(s)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

func writeEntry(w http.ResponseWriter, e query.Entry) {
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		query.Entry
	}{true, e})
}

func (h *handlers) entryFromDefindex(w http.ResponseWriter, r *http.Request) {
	defindex, err := readDefindexBody(r)
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	e, err := h.facade.EntryFromDefindex(defindex)
	if err != nil {
		writeError(w, h.logger, err, fmt.Sprintf("Unable to get item element from defindex %d", defindex))
		return
	}
	writeEntry(w, e)
}

func (h *handlers) entryFromName(w http.ResponseWriter, r *http.Request) {
	name, err := readStringBody(r, "item name")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	e, err := h.facade.EntryFromName(name)
	if err != nil {
		msg := "Item not found"
		if errors.Is(err, query.ErrNoDefindex) {
			msg = "Unable to get item object from item name (defindex is null)"
		}
		writeError(w, h.logger, err, msg)
		return
	}
	writeEntry(w, e)
}

func (h *handlers) entryFromSKU(w http.ResponseWriter, r *http.Request) {
	s, err := readStringBody(r, "item sku")
	if err != nil {
		writeError(w, h.logger, err, "")
		return
	}
	e, err := h.facade.EntryFromSKU(s)
	if err != nil {
		writeError(w, h.logger, err, "Unable to get item element from item sku (defindex is null)")
		return
	}
	writeEntry(w, e)
}
