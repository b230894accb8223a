package products

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"ktvadmin/filemgr"
	"ktvadmin/logger"
	"ktvadmin/utils"
)

type Handler struct {
	svc     *Service
	log     *logger.Logger
	timeout time.Duration
}

func NewHandler(svc *Service, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{svc: svc, log: log, timeout: timeout}
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// GET /products?category=&available=&search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	listing, err := h.svc.List(ctx, Filter{
		Category:  r.URL.Query().Get("category"),
		Available: utils.QueryBool(r, "available"),
		Search:    r.URL.Query().Get("search"),
	})
	if err != nil {
		utils.HandleError(w, h.log, "PRODUCT", err, "Failed to fetch products")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(listing.Products),
		"data":    listing.Products,
		"grouped": listing.Grouped,
	})
}

// GET /products/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.HandleError(w, h.log, "PRODUCT", err, "Failed to fetch product")
		return
	}
	utils.RespondOK(w, http.StatusOK, p, "")
}

// POST /products
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "PRODUCT", err, "Failed to create product")
		return
	}
	utils.RespondOK(w, http.StatusCreated, p, "Product created successfully")
}

// PUT /products with productId in the body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in UpdateInput
	if !utils.DecodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.Update(ctx, in)
	if err != nil {
		utils.HandleError(w, h.log, "PRODUCT", err, "Failed to update product")
		return
	}
	utils.RespondOK(w, http.StatusOK, p, "Product updated successfully")
}

// DELETE /products?productId= and DELETE /products/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	productID := ps.ByName("id")
	if productID == "" {
		productID = r.URL.Query().Get("productId")
	}
	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.svc.Delete(ctx, productID); err != nil {
		utils.HandleError(w, h.log, "PRODUCT", err, "Failed to delete product")
		return
	}
	utils.RespondOK(w, http.StatusOK, nil, "Product deleted successfully")
}

// POST /products/:id/image with a multipart "image" field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, filemgr.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(filemgr.MaxImageSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	if header.Size > filemgr.MaxImageSize {
		utils.RespondWithError(w, http.StatusBadRequest, filemgr.ErrFileTooLarge.Error())
		return
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]
	if err := filemgr.CheckUpload(header.Filename, head); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, err := h.svc.SetImage(ctx, ps.ByName("id"), io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		utils.HandleError(w, h.log, "PRODUCT", err, "Failed to upload image")
		return
	}
	utils.RespondOK(w, http.StatusOK, p, "Product image updated successfully")
}
