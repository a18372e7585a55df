package receipt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/receipt-tracker/internal/receipt"
)

// fakeScanner returns canned OCR text for every image
type fakeScanner struct {
	text string
}

func (f *fakeScanner) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	return f.text, nil
}

func (f *fakeScanner) Close() error {
	return nil
}

const groceryOCRText = `KEELLS SUPER
No. 45, Galle Road, Colombo 03
Date: 03/12/2023
NO ITEM QTY PRICE AMOUNT
1 BASMATI RICE 1 1,250.00 1,250.00
2 DHAL 1 430.00 430.00
SUB TOTAL 1,680.00
NET TOTAL 1,680.00
CASH 2,000.00
CHANGE 320.00
THANK YOU COME AGAIN`

var _ = Describe("Integration", func() {
	var (
		db       receipt.DB
		store    receipt.Storage
		scanner  *fakeScanner
		server   *receipt.Server
		ghServer *ghttp.Server
	)

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()

		var err error
		db, err = receipt.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = receipt.NewLocalStorage(filepath.Join(tempDir, "receipts"))
		Expect(err).NotTo(HaveOccurred())

		scanner = &fakeScanner{text: groceryOCRText}
		server = receipt.NewServer(receipt.NewService(db, scanner, store), receipt.BasicAuth{})
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		ghServer.Close()
		Expect(db.Close()).To(Succeed())
	})

	do := func(req *http.Request) *http.Response {
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("uploads, lists, summarises, exports and deletes a receipt", func() {
		ghServer.AppendHandlers(
			server.ServeHTTP, // upload
			server.ServeHTTP, // list
			server.ServeHTTP, // analytics
			server.ServeHTTP, // export
			server.ServeHTTP, // delete
			server.ServeHTTP, // get after delete
		)

		// upload
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "keells bill.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("fake jpeg content"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		req, err := http.NewRequest(http.MethodPost, ghServer.URL()+"/api/receipts", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp := do(req)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var created receipt.Receipt
		Expect(json.NewDecoder(resp.Body).Decode(&created)).To(Succeed())
		resp.Body.Close()

		Expect(created.Status).To(Equal(receipt.StatusProcessed))
		Expect(created.StoreName).To(Equal("KEELLS SUPER"))
		Expect(created.Items).To(HaveLen(2))
		Expect(created.Total).To(HaveValue(Equal(1680.0)))
		Expect(created.Filename).To(HaveSuffix("_keells_bill.jpg"))

		data, err := store.Get(created.Filename)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("fake jpeg content"))

		saved, err := db.GetReceipt(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.OCRText).To(Equal(groceryOCRText))

		// list
		resp = do(mustRequest(http.MethodGet, ghServer.URL()+"/api/receipts?category=groceries"))
		var listed []receipt.Receipt
		Expect(json.NewDecoder(resp.Body).Decode(&listed)).To(Succeed())
		resp.Body.Close()
		Expect(listed).To(HaveLen(1))
		Expect(listed[0].ID).To(Equal(created.ID))

		// analytics
		resp = do(mustRequest(http.MethodGet, ghServer.URL()+"/api/analytics"))
		var analytics receipt.Analytics
		Expect(json.NewDecoder(resp.Body).Decode(&analytics)).To(Succeed())
		resp.Body.Close()
		Expect(analytics.TotalReceipts).To(Equal(1))
		Expect(analytics.TotalSpent).To(Equal(1680.0))
		Expect(analytics.MonthlyTrend).To(HaveLen(1))
		Expect(analytics.MonthlyTrend[0].Month).To(Equal("2023-03"))

		// export
		resp = do(mustRequest(http.MethodGet, ghServer.URL()+"/api/receipts/export"))
		xlsx, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		f, err := excelize.OpenReader(bytes.NewReader(xlsx))
		Expect(err).NotTo(HaveOccurred())
		rows, err := f.GetRows("Items")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[1][3]).To(Equal("Basmati Rice"))
		Expect(f.Close()).To(Succeed())

		// delete
		resp = do(mustRequest(http.MethodDelete, ghServer.URL()+"/api/receipts/"+created.ID))
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		_, err = store.Get(created.Filename)
		Expect(err).To(HaveOccurred())

		resp = do(mustRequest(http.MethodGet, ghServer.URL()+"/api/receipts/"+created.ID))
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})

func mustRequest(method, url string) *http.Request {
	req, err := http.NewRequest(method, url, nil)
	Expect(err).NotTo(HaveOccurred())
	return req
}
